package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	corsAllowMethods = "GET,POST,DELETE,OPTIONS"
	corsAllowHeaders = "*"
	corsExposeHeader = "Content-Disposition"
)

// CORS returns a middleware answering cross-origin requests from allowOrigin.
// An empty allowOrigin disables the middleware.
func CORS(allowOrigin string) app.HandlerFunc {
	allowOrigin = strings.TrimSpace(allowOrigin)
	return func(ctx context.Context, c *app.RequestContext) {
		if allowOrigin == "" {
			c.Next(ctx)
			return
		}
		c.Response.Header.Set("Access-Control-Allow-Origin", allowOrigin)
		c.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
		c.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Response.Header.Set("Access-Control-Expose-Headers", corsExposeHeader)

		if string(c.Request.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}
