package http

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// The embedded document is the API's contract: it must stay a valid OpenAPI
// spec and keep covering every route the handler mounts.
func TestOpenAPISpec_Valid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		t.Fatalf("spec does not parse: %v", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		t.Fatalf("spec does not validate: %v", err)
	}
}

func TestOpenAPISpec_CoversRoutes(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		t.Fatalf("spec does not parse: %v", err)
	}

	for _, path := range []string{
		"/healthz",
		"/metrics",
		"/v1/states",
		"/v1/states/{name}",
		"/v1/transitions",
		"/v1/journal",
	} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("route %s is not documented", path)
		}
	}

	post := doc.Paths.Find("/v1/states/{name}").Post
	if post == nil {
		t.Fatal("POST /v1/states/{name} is not documented")
	}
	if _, ok := post.Responses.Map()["202"]; !ok {
		t.Error("queued requests answer 202, the document should say so")
	}
}
