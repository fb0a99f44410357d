package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Logging logs one line per request once it has been served. Requests that
// end with a 5xx status are logged at warn level.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		status := c.Response.StatusCode()
		logf := hlog.CtxInfof
		if status >= 500 {
			logf = hlog.CtxWarnf
		}
		logf(ctx, "[%s] %s %s %d %v",
			c.ClientIP(),
			c.Request.Method(),
			c.Request.URI().RequestURI(),
			status,
			time.Since(start),
		)
	}
}
