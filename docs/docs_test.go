package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil || SwaggerInfo.Title == "" {
		t.Fatal("swagger info missing title")
	}

	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	for path, method := range map[string]string{
		"/api/quotes":               "post",
		"/api/sessions":             "post",
		"/api/sessions/{id}/inputs": "put",
		"/api/market-data":          "get",
	} {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Fatalf("expected %s %s in swagger doc", method, path)
		}
	}
}
