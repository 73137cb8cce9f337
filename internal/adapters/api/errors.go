package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	perr "stridekit/internal/platform/errors"
	pstr "stridekit/internal/platform/strings"
)

// Machine codes the server puts in a 401 body when the session can be renewed
const (
	CodeTokenExpired = "token_expired"
	CodeTokenMissing = "token_missing"
)

// StatusError is a non-2xx reply. It is always wrapped in a perr.Error whose
// code follows the status, so callers can use perr.CodeOf or errors.As.
type StatusError struct {
	Status int
	Detail string
	// Code is the machine readable code from the error body, if any
	Code string

	expired bool
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api status %d (%s): %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Detail)
}

// HTTPStatus returns the reply status
func (e *StatusError) HTTPStatus() int { return e.Status }

// AuthExpired reports whether the session was rejected as expired or missing,
// the only condition that triggers a refresh and replay
func (e *StatusError) AuthExpired() bool { return e.expired }

// errorBody is the error envelope: {"detail": ..., "code": ...}.
// detail is a string, a list of {"msg": ...} validation items, or an object
// with its own message and code.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Code   string          `json:"code"`
}

type detailObject struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Code    string `json:"code"`
}

// newStatusError builds the wrapped error for a non-2xx reply
func newStatusError(status int, h http.Header, body []byte, expiredCodes []string) error {
	se := &StatusError{Status: status}
	se.Detail, se.Code = parseErrorBody(body)
	se.Detail = pstr.FirstNonEmpty(se.Detail, http.StatusText(status), "unknown error")
	se.expired = status == http.StatusUnauthorized &&
		((se.Code != "" && slices.Contains(expiredCodes, se.Code)) || invalidToken(h.Values("WWW-Authenticate")))
	return perr.Wrap(se, perr.CodeFromHTTPStatus(status), se.Detail)
}

func parseErrorBody(body []byte) (detail, code string) {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return "", ""
	}
	code = eb.Code
	if len(eb.Detail) == 0 {
		return "", code
	}

	var s string
	if json.Unmarshal(eb.Detail, &s) == nil {
		return s, code
	}
	var obj detailObject
	if json.Unmarshal(eb.Detail, &obj) == nil {
		return pstr.FirstNonEmpty(obj.Message, obj.Msg), pstr.FirstNonEmpty(code, obj.Code)
	}
	var items []detailObject
	if json.Unmarshal(eb.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := pstr.FirstNonEmpty(it.Msg, it.Message); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; "), code
	}
	return "", code
}

// invalidToken reports whether any Bearer challenge carries error="invalid_token" (RFC 6750 §3.1)
func invalidToken(headers []string) bool {
	for _, h := range headers {
		for _, c := range parseChallenges(h) {
			if strings.EqualFold(c.scheme, "bearer") && c.params["error"] == "invalid_token" {
				return true
			}
		}
	}
	return false
}

type challenge struct {
	scheme string
	params map[string]string
}

// parseChallenges splits one WWW-Authenticate value into its challenges (RFC 7235 §4.1).
// A token not followed by "=" starts a new challenge, so
// `Basic realm="api", Bearer error="invalid_token"` yields two.
// Quoted values may contain commas and escaped quotes.
func parseChallenges(h string) []challenge {
	var out []challenge
	for i := 0; i < len(h); {
		i = skipSeps(h, i)
		if i >= len(h) {
			break
		}
		start := i
		for i < len(h) && !strings.ContainsRune(" \t,=", rune(h[i])) {
			i++
		}
		tok := h[start:i]
		if tok == "" {
			// stray "=" with no name
			i++
			continue
		}
		j := i
		for j < len(h) && (h[j] == ' ' || h[j] == '\t') {
			j++
		}
		if j >= len(h) || h[j] != '=' {
			out = append(out, challenge{scheme: tok, params: map[string]string{}})
			continue
		}

		var val string
		val, i = readParamValue(h, j+1)
		if len(out) > 0 {
			out[len(out)-1].params[strings.ToLower(tok)] = val
		}
	}
	return out
}

func skipSeps(h string, i int) int {
	for i < len(h) && (h[i] == ' ' || h[i] == '\t' || h[i] == ',') {
		i++
	}
	return i
}

// readParamValue reads a token or quoted-string starting at i, returning the
// value and the index just past it
func readParamValue(h string, i int) (string, int) {
	for i < len(h) && (h[i] == ' ' || h[i] == '\t') {
		i++
	}
	if i < len(h) && h[i] == '"' {
		var b strings.Builder
		for i++; i < len(h); i++ {
			ch := h[i]
			if ch == '\\' && i+1 < len(h) {
				i++
				b.WriteByte(h[i])
				continue
			}
			if ch == '"' {
				return b.String(), i + 1
			}
			b.WriteByte(ch)
		}
		return b.String(), i
	}
	end := strings.IndexByte(h[i:], ',')
	if end < 0 {
		return strings.TrimSpace(h[i:]), len(h)
	}
	return strings.TrimSpace(h[i : i+end]), i + end
}
