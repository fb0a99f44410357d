package common

import (
	"net/http"
)

// CommonResponse is a lightweight response wrapper used by HTTP handlers.
type CommonResponse struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg,omitempty"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// ReturnOK creates a HTTP 200 response carrying data.
func (CommonResponse) ReturnOK(data interface{}) CommonResponse {
	return CommonResponse{Code: http.StatusOK, Msg: http.StatusText(http.StatusOK), Data: data}
}

// ReturnError creates a failure response with the given code.
func (CommonResponse) ReturnError(code int, err error) CommonResponse {
	resp := CommonResponse{Code: code, Msg: http.StatusText(code)}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
