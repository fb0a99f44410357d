package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/yi-nology/easy_fm/biz/catalog"
	"github.com/yi-nology/easy_fm/biz/service/rm"
	"github.com/yi-nology/easy_fm/pkg/errs"
	"github.com/yi-nology/easy_fm/pkg/naming"
	"github.com/yi-nology/easy_fm/pkg/storage"
	"github.com/yi-nology/easy_fm/pkg/validator"
)

const tempPattern = "easyfm-*"

// FileHandler exposes the resource manager over HTTP.
type FileHandler struct {
	manager *rm.Manager
	upload  *validator.UploadConfig
}

// NewFileHandler creates a FileHandler. A nil upload config applies the
// default size limit and accepts every type.
func NewFileHandler(manager *rm.Manager, upload *validator.UploadConfig) *FileHandler {
	if upload == nil {
		upload = validator.NewUploadConfig(0, nil)
	}
	return &FileHandler{manager: manager, upload: upload}
}

// --------------------- Datastores ---------------------

// CreateDatastoreRequest registers a backend instance.
type CreateDatastoreRequest struct {
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config"`
}

// ListDatastores .
// @router /api/v1/datastores [GET]
func (h *FileHandler) ListDatastores(ctx context.Context, c *app.RequestContext) {
	records, err := h.manager.ListDatastores(ctx)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	views := make([]DatastoreView, 0, len(records))
	for _, record := range records {
		views = append(views, newDatastoreView(record))
	}
	respondData(c, utils.H{"datastores": views})
}

// CreateDatastore validates the configuration by building a backend from it
// before registering it.
// @router /api/v1/datastores [POST]
func (h *FileHandler) CreateDatastore(ctx context.Context, c *app.RequestContext) {
	var req CreateDatastoreRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		writeBadRequest(c, fmt.Errorf("decode request: %w", err))
		return
	}
	req.Kind = strings.TrimSpace(req.Kind)
	if _, err := storage.New(req.Kind, req.Config); err != nil {
		respondError(ctx, c, err)
		return
	}

	id, err := h.manager.RegisterDatastore(ctx, req.Kind, req.Config)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondData(c, utils.H{"id": id})
}

// RemoveDatastore .
// @router /api/v1/datastores/:id [DELETE]
func (h *FileHandler) RemoveDatastore(ctx context.Context, c *app.RequestContext) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	if err := h.manager.RemoveDatastore(ctx, id); err != nil {
		respondError(ctx, c, err)
		return
	}
	respondOK(c)
}

// --------------------- Files ---------------------

// ListFiles returns the records matching the gid, dsid and name query
// parameters. Absent parameters are unconstrained.
// @router /api/v1/files [GET]
func (h *FileHandler) ListFiles(ctx context.Context, c *app.RequestContext) {
	filter := catalog.Filter{
		GID:  strings.TrimSpace(c.Query("gid")),
		Name: c.Query("name"),
	}
	if raw := c.Query("dsid"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeBadRequest(c, err)
			return
		}
		filter.DSID = id
	}

	records, err := h.manager.Resolve(ctx, filter)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondData(c, utils.H{"files": records})
}

// UploadFile stores a multipart file in datastore dsid.
// @router /api/v1/files [POST]
func (h *FileHandler) UploadFile(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	dsid, err := parseID(string(c.FormValue("dsid")))
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	policy, err := naming.ParsePolicy(string(c.FormValue("policy")))
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	name := filepath.Base(fileHeader.Filename)
	if !validator.ValidateFileName(name) {
		writeBadRequest(c, fmt.Errorf("invalid file name %q", fileHeader.Filename))
		return
	}
	if err := h.upload.Validate(fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		writeBadRequest(c, err)
		return
	}

	dir, err := os.MkdirTemp("", tempPattern)
	if err != nil {
		respondError(ctx, c, errs.File(err))
		return
	}
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fileHeader, source); err != nil {
		respondError(ctx, c, errs.File(err))
		return
	}

	record, err := h.manager.Upload(ctx, dsid, source, policy)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondData(c, utils.H{"file": record})
}

// GetFile streams the content of file gid back to the client.
// @router /api/v1/files/:gid [GET]
func (h *FileHandler) GetFile(ctx context.Context, c *app.RequestContext) {
	gid := c.Param("gid")

	dir, err := os.MkdirTemp("", tempPattern)
	if err != nil {
		respondError(ctx, c, errs.File(err))
		return
	}
	defer os.RemoveAll(dir)

	destination := filepath.Join(dir, "content")
	record, err := h.manager.Download(ctx, catalog.Filter{GID: gid}, destination)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	// the open file outlives the temp dir removal and is closed by the
	// response once streamed
	f, err := os.Open(destination)
	if err != nil {
		respondError(ctx, c, errs.File(err))
		return
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		respondError(ctx, c, errs.File(err))
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(record.Name))
	if contentType == "" {
		contentType = consts.MIMEApplicationOctetStream
	}
	c.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	c.SetStatusCode(consts.StatusOK)
	c.SetContentType(contentType)
	c.SetBodyStream(f, int(info.Size()))
}

// DeleteFile .
// @router /api/v1/files/:gid [DELETE]
func (h *FileHandler) DeleteFile(ctx context.Context, c *app.RequestContext) {
	record, err := h.manager.Delete(ctx, c.Param("gid"))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	respondData(c, utils.H{"file": record})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid datastore id %q", raw)
	}
	return uint(id), nil
}
