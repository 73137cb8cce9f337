// Package bind decodes and validates JSON request bodies for handlers
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"
	"stridekit/internal/platform/validate"
)

// DefaultLimit caps a body when no Limit option is given
const DefaultLimit = 1 << 20

type settings struct {
	limit   int64
	unknown bool
	empty   bool
}

// Option relaxes or tightens ParseJSON
type Option func(*settings)

// Limit caps the body at n bytes; n <= 0 lifts the cap
func Limit(n int64) Option { return func(s *settings) { s.limit = n } }

// AllowUnknown accepts fields T does not declare
func AllowUnknown() Option { return func(s *settings) { s.unknown = true } }

// AllowEmpty turns an empty body into the zero T, still validated
func AllowEmpty() Option { return func(s *settings) { s.empty = true } }

// ParseJSON decodes exactly one JSON value into T and validates it.
// Decode problems are ErrorCodeJSON; rule failures are ErrorCodeValidation
// with the offending json field.
func ParseJSON[T any](r *http.Request, opts ...Option) (T, error) {
	var dst T
	s := settings{limit: DefaultLimit}
	for _, o := range opts {
		o(&s)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Debug().Err(err).Msg("close request body failed")
		}
	}()

	var body io.Reader = r.Body
	if s.limit > 0 {
		body = io.LimitReader(r.Body, s.limit+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return dst, perr.Wrapf(err, perr.ErrorCodeJSON, "read body")
	}
	if s.limit > 0 && int64(len(raw)) > s.limit {
		return dst, perr.JSONErrf("body exceeds %d bytes", s.limit)
	}

	if len(raw) == 0 {
		if !s.empty {
			return dst, perr.JSONErrf("empty body")
		}
	} else if err := decode(raw, &dst, s.unknown); err != nil {
		return dst, err
	}

	if err := validate.Struct(dst); err != nil {
		var zero T
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			return zero, perr.JSONErrf("body must be a JSON object")
		}
		return zero, err
	}
	return dst, nil
}

func decode(raw []byte, dst any, unknown bool) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if !unknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return perr.JSONErrf("invalid JSON at offset %d", se.Offset)
		}
		return perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return perr.JSONErrf("unexpected data after the JSON value")
	}
	return nil
}
