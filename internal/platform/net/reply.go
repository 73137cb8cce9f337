package net

import (
	"net/http"

	perr "stridekit/internal/platform/errors"
)

// ErrorBody is what every non-2xx reply carries: a human detail plus a
// machine code clients can match on without parsing the detail
type ErrorBody struct {
	Detail    string `json:"detail"`
	Code      string `json:"code,omitempty"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Error maps err to a status and body. The code is the error's reason when
// it has one, else the name of its perr code.
func Error(err error, reqID string) (int, ErrorBody) {
	if err == nil {
		return http.StatusOK, ErrorBody{}
	}
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	code := w.Reason
	if code == "" {
		code = w.Code.String()
	}
	return status, ErrorBody{
		Detail:    w.Message,
		Code:      code,
		Field:     w.Field,
		RequestID: reqID,
	}
}
