package router

import (
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/yi-nology/easy_fm/biz/handler"
	"github.com/yi-nology/easy_fm/biz/handler/version"
	"github.com/yi-nology/easy_fm/biz/middleware"
	"github.com/yi-nology/easy_fm/pkg/lock"
	"github.com/yi-nology/easy_fm/pkg/metrics"
)

// Register configures the HTTP routes of the file manager. Datastore changes
// go through the catalog write lock when one is installed; file writes are
// locked per datastore by the manager.
func Register(r *route.Engine, h *handler.FileHandler) {
	r.GET("/ping", handler.Ping)

	v1 := r.Group("/api/v1")
	v1.GET("/version", version.GetVersion)

	datastores := v1.Group("/datastores")
	datastores.GET("", h.ListDatastores)
	datastores.POST("", append(middleware.WriteLockMw(lock.CatalogName), h.CreateDatastore)...)
	datastores.DELETE("/:id", append(middleware.WriteLockMw(lock.CatalogName), h.RemoveDatastore)...)

	files := v1.Group("/files")
	files.GET("", h.ListFiles)
	files.POST("", h.UploadFile)
	files.GET("/:gid", h.GetFile)
	files.DELETE("/:gid", h.DeleteFile)
}

// RegisterMetrics exposes c on /metrics.
func RegisterMetrics(r *route.Engine, c *metrics.Collector) {
	r.GET("/metrics", adaptor.HertzHandler(c.Handler()))
}
