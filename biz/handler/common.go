package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/biz/service/rm"
	"github.com/yi-nology/easy_fm/pkg/common"
	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/lock"
	"github.com/yi-nology/easy_fm/pkg/storage"
)

// Ping answers liveness probes.
func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"message": "pong"})
}

// StatusOf maps an error class onto the response code.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return consts.StatusOK
	case errors.Is(err, errs.ErrNotFound):
		return consts.StatusNotFound
	case errors.Is(err, errs.ErrAmbiguous):
		return consts.StatusConflict
	case errors.Is(err, errs.ErrConfig):
		return consts.StatusBadRequest
	case errors.Is(err, lock.ErrTimeout):
		return consts.StatusServiceUnavailable
	case errors.Is(err, errs.ErrOperationFailed):
		return consts.StatusBadGateway
	default:
		return consts.StatusInternalServerError
	}
}

// --------------------- Response helpers ---------------------

func respondData(c *app.RequestContext, data interface{}) {
	c.JSON(consts.StatusOK, common.CommonResponse{}.ReturnOK(data))
}

func respondOK(c *app.RequestContext) {
	c.JSON(consts.StatusOK, common.CommonResponse{Code: consts.StatusOK, Msg: http.StatusText(consts.StatusOK)})
}

func writeBadRequest(c *app.RequestContext, err error) {
	c.JSON(consts.StatusOK, common.CommonResponse{}.ReturnError(consts.StatusBadRequest, err))
}

// respondError writes err with the code of its class. Ambiguous lookups carry
// their candidates.
func respondError(ctx context.Context, c *app.RequestContext, err error) {
	status := StatusOf(err)
	resp := common.CommonResponse{}.ReturnError(status, err)

	var ambiguous *rm.AmbiguousError
	if errors.As(err, &ambiguous) {
		resp.Data = utils.H{"candidates": ambiguous.Candidates}
	}
	if status >= consts.StatusInternalServerError {
		hlog.CtxErrorf(ctx, "%s %s: %v", c.Request.Method(), c.Request.URI().Path(), err)
	}
	c.JSON(consts.StatusOK, resp)
}

// --------------------- Views ---------------------

// DatastoreView is a datastore registration with secrets masked.
type DatastoreView struct {
	ID     uint            `json:"id"`
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

func newDatastoreView(record catalog.DatastoreRecord) DatastoreView {
	return DatastoreView{ID: record.ID, Kind: record.Kind, Config: storage.Redact(record.Config)}
}
