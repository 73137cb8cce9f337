// Package http provides the router facade, server and JSON reply helpers.
// Successful replies are the bare resource; failures carry pnet.ErrorBody.
package http

import (
	"encoding/json"
	stdhttp "net/http"

	"stridekit/internal/platform/logger"
	pnet "stridekit/internal/platform/net"
)

const contentTypeJSON = "application/json; charset=utf-8"

// JSON writes v with status. An encode failure can only be logged, the
// status line is already out.
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Named("http").Debug().Err(err).Int("status", status).Msg("write json reply failed")
	}
}

// RespondOK writes data with a 200
func RespondOK(w stdhttp.ResponseWriter, _ *stdhttp.Request, data any) {
	JSON(w, stdhttp.StatusOK, data)
}

// RespondError maps err to its status and error body, tagged with the request id
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, body := pnet.Error(err, pnet.RequestID(r.Context()))
	WriteError(w, status, body)
}

// WriteError writes an already built error body; it fits middleware.ErrorWriter
func WriteError(w stdhttp.ResponseWriter, status int, body pnet.ErrorBody) {
	JSON(w, status, body)
}

// Response is what return-style handlers produce. A Body that is an error
// is rendered through RespondError.
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a return-style handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		for k, vv := range resp.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
		if err, ok := resp.Body.(error); ok {
			RespondError(w, r, err)
			return
		}
		switch resp.Status {
		case 0:
			JSON(w, stdhttp.StatusOK, resp.Body)
		case stdhttp.StatusNoContent:
			w.WriteHeader(stdhttp.StatusNoContent)
		default:
			JSON(w, resp.Status, resp.Body)
		}
	}
}

// OK is a 200 carrying data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created is a 201 carrying the new resource
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// Error renders err as an error body
func Error(err error) Response { return Response{Body: err} }
