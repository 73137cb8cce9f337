package http

import (
	"encoding/json"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocFunc returns the raw OpenAPI document, e.g. a registered swag spec's ReadDoc
type DocFunc func() string

// MountSwagger serves the swagger UI under prefix and the document at
// prefix/doc.json. Nothing is mounted unless enabled.
func MountSwagger(r Router, prefix string, doc DocFunc, enabled bool) {
	if !enabled || doc == nil {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	r.Get(prefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, prefix+"/", http.StatusPermanentRedirect)
	})
	r.Get(prefix+"/doc.json", serveDocJSON(doc))
	r.Handle(prefix+"/*", httpSwagger.Handler(
		httpSwagger.URL(prefix+"/doc.json"),
		httpSwagger.DocExpansion("list"),
	))
}

// serveDocJSON serves doc as OAS 3.0 with the error envelope every route can return
func serveDocJSON(doc DocFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(doc()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		ensureServers(spec, "/")
		ensureErrorBody(spec)
		addDefaultError(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers lifts swagger 2 and 3.1 documents to 3.0.3, the newest the UI renders
func ensureServers(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// ensureErrorBody adds the ErrorBody schema written by RespondError if missing
func ensureErrorBody(spec map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorBody"]; ok {
		return
	}
	schemas["ErrorBody"] = map[string]any{
		"type":        "object",
		"description": "Error reply",
		"properties": map[string]any{
			"detail":     map[string]any{"type": "string"},
			"code":       map[string]any{"type": "string"},
			"field":      map[string]any{"type": "string"},
			"request_id": map[string]any{"type": "string"},
		},
		"required": []any{"detail"},
	}
}

// addDefaultError gives every operation a 500 reply if it documents none
func addDefaultError(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	reply := map[string]any{
		"description": "Internal Server Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/ErrorBody"},
				"example": map[string]any{"detail": "internal error", "code": "panic", "request_id": "host/abc-000001"},
			},
		},
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			resps, ok := op["responses"].(map[string]any)
			if !ok {
				resps = map[string]any{}
				op["responses"] = resps
			}
			if _, ok := resps["500"]; !ok {
				resps["500"] = reply
			}
		}
	}
}
