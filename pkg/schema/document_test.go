package schema

import (
	"encoding/json"
	"testing"
)

const sampleSchema = `{
  "title": "sample",
  "properties": {
    "metadata_name": {"type": "string", "description": "Resource name"},
    "image": {"type": "string", "description": "Container image"},
    "node_count": {"type": "integer", "description": "Nodes", "default": 1},
    "pull_policy": {"type": "string", "enum": ["Always", "IfNotPresent", "Never"], "default": "IfNotPresent"},
    "deep_health_check": {"type": "boolean", "default": false}
  },
  "required": ["metadata_name", "image"]
}`

func TestParseDocumentKeepsDeclaredOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	want := []string{"metadata_name", "image", "node_count", "pull_policy", "deep_health_check"}
	if len(doc.Properties) != len(want) {
		t.Fatalf("got %d properties, want %d", len(doc.Properties), len(want))
	}
	for i, name := range want {
		if doc.Properties[i].Name != name {
			t.Fatalf("property %d = %q, want %q", i, doc.Properties[i].Name, name)
		}
	}
}

func TestParseDocumentDetails(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if !doc.IsRequired("metadata_name") || !doc.IsRequired("image") {
		t.Fatal("required properties not detected")
	}
	if doc.IsRequired("node_count") {
		t.Fatal("node_count reported required")
	}

	byName := map[string]Property{}
	for _, p := range doc.Properties {
		byName[p.Name] = p
	}

	nc := byName["node_count"]
	if !nc.HasDefault() {
		t.Fatal("node_count default lost")
	}
	if n, ok := nc.Default.(json.Number); !ok || n.String() != "1" {
		t.Fatalf("node_count default = %v (%T), want json.Number 1", nc.Default, nc.Default)
	}

	pp := byName["pull_policy"]
	if len(pp.Enum) != 3 || pp.Enum[0] != "Always" {
		t.Fatalf("pull_policy enum = %v", pp.Enum)
	}

	if byName["metadata_name"].Description != "Resource name" {
		t.Fatalf("description lost: %+v", byName["metadata_name"])
	}
}

func TestParseDocumentRejectsGarbage(t *testing.T) {
	if _, err := ParseDocument([]byte(`["not", "an", "object"]`)); err == nil {
		t.Fatal("array input should fail")
	}
	if _, err := ParseDocument([]byte(`{"properties": 42}`)); err == nil {
		t.Fatal("non-object properties should fail")
	}
}
