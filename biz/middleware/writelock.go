package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/easy_fm/pkg/common"
	"github.com/yi-nology/easy_fm/pkg/lock"
)

var globalWriteLock lock.Locker

// InitWriteLock sets the global write lock. A nil lock disables locking.
func InitWriteLock(l lock.Locker) {
	globalWriteLock = l
}

// WriteLockMw returns the middleware serializing requests that take the
// named lock across servers sharing one catalog. Without a lock it returns
// nil so requests pass straight through.
func WriteLockMw(name string) []app.HandlerFunc {
	if globalWriteLock == nil {
		return nil
	}
	return []app.HandlerFunc{writeLockHandler(globalWriteLock, name)}
}

func writeLockHandler(l lock.Locker, name string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		unlock, err := l.Acquire(ctx, name)
		if err != nil {
			hlog.CtxWarnf(ctx, "[WriteLock] failed to acquire %s: %v", name, err)
			c.JSON(consts.StatusServiceUnavailable, common.CommonResponse{
				Code:  consts.StatusServiceUnavailable,
				Msg:   "service busy, please retry later",
				Error: err.Error(),
			})
			c.Abort()
			return
		}
		defer func() {
			if releaseErr := unlock(ctx); releaseErr != nil {
				hlog.CtxErrorf(ctx, "[WriteLock] failed to release %s: %v", name, releaseErr)
			}
		}()
		c.Next(ctx)
	}
}
