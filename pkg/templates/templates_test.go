package templates

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"testing"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
)

func TestCommandFamilyMapping(t *testing.T) {
	cases := []struct {
		family  string
		command string
	}{
		{PyTorchFamily, PyTorchCommand},
		{JumpStartFamily, JumpStartCommand},
		{CustomFamily, CustomCommand},
	}
	for _, c := range cases {
		if got := CommandForFamily(c.family); got != c.command {
			t.Errorf("CommandForFamily(%s) = %q, want %q", c.family, got, c.command)
		}
		family, err := FamilyForTemplate(c.command)
		if err != nil || family != c.family {
			t.Errorf("FamilyForTemplate(%s) = (%q, %v), want %q", c.command, family, err, c.family)
		}
	}

	if got := CommandForFamily("nope"); got != "" {
		t.Errorf("CommandForFamily(nope) = %q, want empty", got)
	}
	_, err := FamilyForTemplate("nope")
	var unknown *clierr.UnknownTemplate
	if !errors.As(err, &unknown) {
		t.Errorf("FamilyForTemplate(nope) = %v, want UnknownTemplate", err)
	}
}

func TestEmbeddedSchemaLayout(t *testing.T) {
	entries, err := fs.ReadDir(Schemas, SchemaRoot)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	want := map[string]bool{
		PyTorchFamily + ".v1_0":   false,
		PyTorchFamily + ".v1_1":   false,
		JumpStartFamily + ".v1_0": false,
		CustomFamily + ".v1_0":    false,
		CustomFamily + ".v1_1":    false,
	}
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("unexpected non-directory %q under %s", e.Name(), SchemaRoot)
			continue
		}
		if _, ok := want[e.Name()]; !ok {
			t.Errorf("unexpected sub-resource %q", e.Name())
			continue
		}
		want[e.Name()] = true
		raw, err := fs.ReadFile(Schemas, path.Join(SchemaRoot, e.Name(), "schema.json"))
		if err != nil {
			t.Errorf("%s: %v", e.Name(), err)
			continue
		}
		if !strings.Contains(string(raw), `"properties"`) {
			t.Errorf("%s: schema.json without properties", e.Name())
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing sub-resource %q", name)
		}
	}
}

func TestDecode(t *testing.T) {
	var out struct {
		Image string `json:"image"`
		Count int    `json:"node_count"`
	}
	values := map[string]interface{}{"image": "img", "node_count": int64(3)}
	if err := Decode(values, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Image != "img" || out.Count != 3 {
		t.Fatalf("decoded = %+v", out)
	}

	bad := map[string]interface{}{"node_count": "three"}
	if err := Decode(bad, &out); err == nil {
		t.Fatal("type mismatch should fail")
	}
}
