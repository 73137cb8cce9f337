package http

import (
	"net/http"

	"stridekit/internal/platform/net/http/bind"
)

// GetJSON mounts h for GET and writes its result with 200
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		out, err := h(req)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	}))
}

// PostJSON binds and validates the body into T before calling h, and writes
// the created resource with 201
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, Handle(func(req *http.Request) Response {
		in, err := bind.ParseJSON[T](req)
		if err != nil {
			return Error(err)
		}
		out, err := h(req, in)
		if err != nil {
			return Error(err)
		}
		return Created(out)
	}))
}
