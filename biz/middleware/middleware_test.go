package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/yi-nology/easy_fm/pkg/lock"
)

type fakeLocker struct {
	mu         sync.Mutex
	acquireErr error
	acquired   []string
	released   []string
}

func (l *fakeLocker) Acquire(_ context.Context, name string) (lock.Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acquireErr != nil {
		return nil, l.acquireErr
	}
	l.acquired = append(l.acquired, name)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released = append(l.released, name)
		return nil
	}, nil
}

func newEngine(handlers ...app.HandlerFunc) *route.Engine {
	engine := route.NewEngine(config.NewOptions(nil))
	engine.Use(Recovery(), Logging())
	engine.POST("/write", append(handlers, func(ctx context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, "written")
	})...)
	engine.GET("/panic", func(ctx context.Context, c *app.RequestContext) {
		panic("boom")
	})
	return engine
}

func TestWriteLockMwDisabled(t *testing.T) {
	InitWriteLock(nil)
	if mw := WriteLockMw(lock.CatalogName); mw != nil {
		t.Fatalf("expected no middleware without a lock, got %d", len(mw))
	}
}

func TestWriteLockMwAcquiresAndReleases(t *testing.T) {
	locker := &fakeLocker{}
	InitWriteLock(locker)
	t.Cleanup(func() { InitWriteLock(nil) })

	w := ut.PerformRequest(newEngine(WriteLockMw(lock.CatalogName)...), consts.MethodPost, "/write", nil)
	resp := w.Result()
	if resp.StatusCode() != consts.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode())
	}
	if len(locker.acquired) != 1 || locker.acquired[0] != lock.CatalogName ||
		len(locker.released) != 1 || locker.released[0] != lock.CatalogName {
		t.Fatalf("unexpected lock usage: acquired=%v released=%v", locker.acquired, locker.released)
	}
}

func TestWriteLockMwBusy(t *testing.T) {
	locker := &fakeLocker{acquireErr: errors.New("timeout")}
	InitWriteLock(locker)
	t.Cleanup(func() { InitWriteLock(nil) })

	w := ut.PerformRequest(newEngine(WriteLockMw(lock.CatalogName)...), consts.MethodPost, "/write", nil)
	resp := w.Result()
	if resp.StatusCode() != consts.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode())
	}
	if string(resp.Body()) == "written" {
		t.Fatalf("handler ran without the lock")
	}
	if len(locker.released) != 0 {
		t.Fatalf("released a lock that was never acquired")
	}
}

func TestRecovery(t *testing.T) {
	w := ut.PerformRequest(newEngine(), consts.MethodGet, "/panic", nil)
	if code := w.Result().StatusCode(); code != consts.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
}

func TestCORS(t *testing.T) {
	t.Run("Preflight", func(t *testing.T) {
		engine := route.NewEngine(config.NewOptions(nil))
		engine.Use(CORS("https://fm.example.com"))
		engine.OPTIONS("/api", func(ctx context.Context, c *app.RequestContext) {
			c.String(consts.StatusOK, "unreachable")
		})
		w := ut.PerformRequest(engine, consts.MethodOptions, "/api", nil)
		resp := w.Result()
		if resp.StatusCode() != consts.StatusNoContent {
			t.Fatalf("expected 204, got %d", resp.StatusCode())
		}
		if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got != "https://fm.example.com" {
			t.Fatalf("unexpected allow origin %q", got)
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		engine := route.NewEngine(config.NewOptions(nil))
		engine.Use(CORS(""))
		engine.GET("/api", func(ctx context.Context, c *app.RequestContext) {
			c.String(consts.StatusOK, "ok")
		})
		w := ut.PerformRequest(engine, consts.MethodGet, "/api", nil)
		resp := w.Result()
		if got := resp.Header.Peek("Access-Control-Allow-Origin"); len(got) != 0 {
			t.Fatalf("expected no CORS header, got %q", got)
		}
	})
}
