package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	perr "stridekit/internal/platform/errors"
)

// BodyKind selects how Request.Body is encoded
type BodyKind uint8

const (
	// BodyJSON marshals Body with encoding/json
	BodyJSON BodyKind = iota
	// BodyForm expects url.Values and sends application/x-www-form-urlencoded
	BodyForm
	// BodyMultipart expects Multipart; the boundary content type is generated
	BodyMultipart
)

// Request describes one api call. It is encoded once, so a replay after a
// session refresh sends exactly the same bytes.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Kind   BodyKind

	// ContentType overrides the type derived from Kind
	ContentType string
}

// FilePart is one file in a multipart body
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart is the body of a BodyMultipart request
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// payload is an encoded body, safe to send any number of times
type payload struct {
	body        []byte
	contentType string
}

func (p payload) reader() io.Reader {
	if p.body == nil {
		return http.NoBody
	}
	return bytes.NewReader(p.body)
}

func (r Request) encode() (payload, error) {
	if r.Body == nil {
		return payload{contentType: r.ContentType}, nil
	}
	var p payload
	switch r.Kind {
	case BodyJSON:
		b, err := json.Marshal(r.Body)
		if err != nil {
			return payload{}, perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s %s", r.Method, r.Path)
		}
		p = payload{body: b, contentType: "application/json"}
	case BodyForm:
		form, ok := r.Body.(url.Values)
		if !ok {
			return payload{}, perr.InvalidArgf("form body must be url.Values, got %T", r.Body)
		}
		p = payload{body: []byte(form.Encode()), contentType: "application/x-www-form-urlencoded"}
	case BodyMultipart:
		var mp Multipart
		switch v := r.Body.(type) {
		case Multipart:
			mp = v
		case *Multipart:
			mp = *v
		default:
			return payload{}, perr.InvalidArgf("multipart body must be Multipart, got %T", r.Body)
		}
		var err error
		if p, err = mp.encode(); err != nil {
			return payload{}, err
		}
	default:
		return payload{}, perr.InvalidArgf("unknown body kind %d", r.Kind)
	}
	if r.ContentType != "" {
		p.contentType = r.ContentType
	}
	return p, nil
}

func (m Multipart) encode() (payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return payload{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "write field %s", k)
		}
	}
	for _, f := range m.Files {
		if f.Content == nil {
			return payload{}, perr.InvalidArgf("file part %q has no content", f.Field)
		}
		fw, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return payload{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "create part %s", f.Field)
		}
		if _, err := io.Copy(fw, f.Content); err != nil {
			return payload{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read %s", f.Filename)
		}
	}
	if err := w.Close(); err != nil {
		return payload{}, perr.Wrap(err, perr.ErrorCodeUnknown, "close multipart body")
	}
	return payload{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// Response is a successful (2xx) reply with its body fully read
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "decode response")
	}
	return nil
}
