package options

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/schema"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
)

const schemaV1_0 = `{
  "properties": {
    "metadata_name": {"type": "string", "description": "Resource name"},
    "namespace": {"type": "string", "description": "Namespace"},
    "image": {"type": "string", "description": "Container image"},
    "node_count": {"type": "integer", "description": "Nodes", "default": 1},
    "pull_policy": {"type": "string", "description": "Image pull policy", "enum": ["Always", "IfNotPresent", "Never"], "default": "IfNotPresent"},
    "env": {"type": "object", "description": "Environment"},
    "version": {"type": "number", "description": "Schema version", "default": 1.0}
  },
  "required": ["metadata_name", "image"]
}`

const schemaV1_1 = `{
  "properties": {
    "metadata_name": {"type": "string", "description": "Resource name"},
    "namespace": {"type": "string", "description": "Namespace"},
    "image": {"type": "string", "description": "Container image"},
    "node_count": {"type": "integer", "description": "Nodes", "default": 1},
    "pull_policy": {"type": "string", "description": "Image pull policy", "enum": ["Always", "IfNotPresent", "Never"], "default": "IfNotPresent"},
    "accelerators": {"type": "integer", "description": "Accelerator count"},
    "env": {"type": "object", "description": "Environment"},
    "version": {"type": "number", "description": "Schema version", "default": 1.1}
  },
  "required": ["metadata_name", "image"]
}`

type fakeJob struct {
	values map[string]interface{}
}

func testCache(t *testing.T) *schema.Cache {
	t.Helper()
	return schema.NewCache(func(family, version string) ([]byte, error) {
		switch version {
		case "1.0":
			return []byte(schemaV1_0), nil
		case "1.1":
			return []byte(schemaV1_1), nil
		}
		return nil, fmt.Errorf("no schema for %s", version)
	})
}

func testConfig(t *testing.T, argv []string, captured **Request[*fakeJob]) Config[*fakeJob] {
	t.Helper()
	bind := func(values map[string]interface{}) (*fakeJob, error) {
		return &fakeJob{values: values}, nil
	}
	return Config[*fakeJob]{
		Use:    templates.PyTorchCommand,
		Short:  "Create a training job",
		Family: templates.PyTorchFamily,
		Versions: map[string]func(values map[string]interface{}) (*fakeJob, error){
			"1.0": bind,
			"1.1": bind,
		},
		Run: func(cmd *cobra.Command, req *Request[*fakeJob]) error {
			*captured = req
			return nil
		},
		Cache: testCache(t),
		Argv:  argv,
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.Execute()
}

func flagNames(fs *pflag.FlagSet) []string {
	var names []string
	fs.VisitAll(func(f *pflag.Flag) { names = append(names, f.Name) })
	return names
}

func TestFlagOrderFollowsSchema(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	want := []string{
		"version", "env", "dimensions", "resources-limits", "resources-requests",
		"metadata-name", "namespace", "image", "node-count", "pull-policy", "accelerators",
	}
	if got := flagNames(cmd.Flags()); !reflect.DeepEqual(got, want) {
		t.Fatalf("flags = %v, want %v", got, want)
	}
}

func TestReservedPropertiesNotProjected(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	// env and version appear once as fixed flags, never as schema-typed ones.
	env := cmd.Flags().Lookup("env")
	if env == nil || env.Value.Type() != "string" {
		t.Fatalf("env flag = %v, want fixed string flag", env)
	}
	ver := cmd.Flags().Lookup("version")
	if ver == nil || ver.Value.Type() != "string" {
		t.Fatalf("version flag = %v, want fixed string flag", ver)
	}
}

func TestRequestedVersionShapesFlags(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand, "--version", "1.0"}, &req))

	if cmd.Flags().Lookup("accelerators") != nil {
		t.Fatal("flag from a newer schema version leaked into 1.0")
	}
	if err := run(t, cmd, "--metadata-name", "j1", "--image", "img", "--version", "1.0"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if req.Version != "1.0" {
		t.Fatalf("req.Version = %q, want 1.0", req.Version)
	}
}

func TestControlKeysStrippedFromBinderValues(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	err := run(t, cmd, "--metadata-name", "j1", "--namespace", "team-a", "--image", "img")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if req.Name != "j1" || req.Namespace != "team-a" || req.Version != "1.1" {
		t.Fatalf("request = %+v", req)
	}
	values := req.Domain.values
	for _, control := range []string{"metadata_name", "namespace", "version"} {
		if _, ok := values[control]; ok {
			t.Fatalf("control key %q reached the binder: %v", control, values)
		}
	}
	if values["image"] != "img" {
		t.Fatalf("image missing from binder values: %v", values)
	}
}

func TestDefaultsFlowWhenUnset(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	if err := run(t, cmd, "--metadata-name", "j1", "--image", "img"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	values := req.Domain.values
	if values["node_count"] != int64(1) {
		t.Fatalf("node_count = %v (%T), want int64 1", values["node_count"], values["node_count"])
	}
	if values["pull_policy"] != "IfNotPresent" {
		t.Fatalf("pull_policy = %v", values["pull_policy"])
	}
	if _, ok := values["accelerators"]; ok {
		t.Fatalf("unset property without default leaked: %v", values)
	}
}

func TestRequiredFlagsEnforced(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	err := run(t, cmd, "--image", "img")
	if err == nil || !strings.Contains(err.Error(), "metadata-name") {
		t.Fatalf("got %v, want missing required flag error", err)
	}
}

func TestEnumRejection(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	err := run(t, cmd, "--metadata-name", "j1", "--image", "img", "--pull-policy", "Sometimes")
	if err == nil || !strings.Contains(err.Error(), `invalid value "Sometimes" for --pull-policy`) {
		t.Fatalf("got %v, want enum rejection", err)
	}
}

func TestJSONFlagParsing(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	err := run(t, cmd, "--metadata-name", "j1", "--image", "img", "--env", `{"A":"1"}`)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	env, ok := req.Domain.values["env"].(map[string]interface{})
	if !ok || env["A"] != "1" {
		t.Fatalf("env = %v", req.Domain.values["env"])
	}
}

func TestJSONFlagInvalid(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand}, &req))

	err := run(t, cmd, "--metadata-name", "j1", "--image", "img", "--env", "{broken")
	var invalid *clierr.InvalidJSON
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidJSON", err)
	}
	if invalid.Flag != "env" {
		t.Fatalf("InvalidJSON names %q, want env", invalid.Flag)
	}
}

func TestUnknownVersionFailsForOwnCommand(t *testing.T) {
	var req *Request[*fakeJob]
	cmd := NewCommand(testConfig(t, []string{templates.PyTorchCommand, "--version", "9.9"}, &req))

	err := run(t, cmd, "--metadata-name", "j1", "--image", "img", "--version", "9.9")
	var unsupported *clierr.UnsupportedVersion
	if !errors.As(err, &unsupported) {
		t.Fatalf("got %v, want UnsupportedVersion", err)
	}
}

func TestStrayVersionFallsBackToLatest(t *testing.T) {
	var req *Request[*fakeJob]
	argv := []string{templates.CustomCommand, "--version", "9.9"}
	cmd := NewCommand(testConfig(t, argv, &req))

	if err := run(t, cmd, "--metadata-name", "j1", "--image", "img"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if req.Version != "1.1" {
		t.Fatalf("req.Version = %q, want latest", req.Version)
	}
}

func TestDegradedSynthesisFailsAtExecution(t *testing.T) {
	broken := schema.NewCache(func(family, version string) ([]byte, error) {
		return nil, fmt.Errorf("unreachable")
	})
	var req *Request[*fakeJob]
	cfg := testConfig(t, []string{templates.PyTorchCommand}, &req)
	cfg.Cache = broken
	cmd := NewCommand(cfg)

	// Synthesis degrades to the fixed flags only.
	want := []string{"version", "env", "dimensions", "resources-limits", "resources-requests"}
	if got := flagNames(cmd.Flags()); !reflect.DeepEqual(got, want) {
		t.Fatalf("degraded flags = %v, want %v", got, want)
	}

	if err := run(t, cmd); err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("got %v, want execution-time load failure", err)
	}
}
