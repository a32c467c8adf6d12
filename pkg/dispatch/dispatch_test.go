package dispatch

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/registry"
)

// recorder captures the args a resolved leaf was executed with.
type recorder struct {
	calls int
	args  []string
}

func (rec *recorder) factory() registry.Factory {
	return func() (*cobra.Command, error) {
		rec.calls++
		return &cobra.Command{
			Use:                "leaf",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				rec.args = args
				return nil
			},
		}, nil
	}
}

func newTestRegistry(rec, def *recorder) *registry.Registry {
	r := registry.New()
	r.AddGroup(registry.Group{Key: "create", Help: "Create a resource", DefaultCommand: "_default_create"})
	r.AddGroup(registry.Group{Key: "list", Help: "List resources"})
	r.Add(registry.Descriptor{Group: "create", Name: "hyp-pytorch-job", Help: "Create a training job", Factory: rec.factory()})
	r.Add(registry.Descriptor{Group: "create", Name: "_default_create", Help: "Scaffold create", Hidden: true, Factory: def.factory()})
	r.Add(registry.Descriptor{Group: "list", Name: "hyp-pytorch-job", Help: "List training jobs", Factory: rec.factory()})
	return r
}

func runGroup(t *testing.T, r *registry.Registry, group string, args []string) (string, error) {
	t.Helper()
	g, ok := r.GroupByKey(group)
	if !ok {
		t.Fatalf("group %q not registered", group)
	}
	cmd := NewGroupCommand(r, g)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDispatchForwardsToSubcommand(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	if _, err := runGroup(t, r, "create", []string{"hyp-pytorch-job", "--image", "img"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rec.calls != 1 || def.calls != 0 {
		t.Fatalf("factory calls = (%d, %d), want (1, 0)", rec.calls, def.calls)
	}
	if want := []string{"--image", "img"}; !reflect.DeepEqual(rec.args, want) {
		t.Fatalf("forwarded args = %v, want %v", rec.args, want)
	}
}

func TestDispatchInjectsDefaultCommand(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	if _, err := runGroup(t, r, "create", []string{"--foo", "bar"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if def.calls != 1 || rec.calls != 0 {
		t.Fatalf("factory calls = (rec=%d, def=%d), want default only", rec.calls, def.calls)
	}
	if want := []string{"--foo", "bar"}; !reflect.DeepEqual(def.args, want) {
		t.Fatalf("default received %v, want %v", def.args, want)
	}
}

func TestHelpTokenSuppressesDefaultInjection(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}, {"--foo", "--help"}} {
		rec, def := &recorder{}, &recorder{}
		r := newTestRegistry(rec, def)

		out, err := runGroup(t, r, "create", args)
		if err != nil {
			t.Fatalf("args %v: %v", args, err)
		}
		if def.calls != 0 || rec.calls != 0 {
			t.Fatalf("args %v constructed an implementation", args)
		}
		if !strings.Contains(out, "hyp-pytorch-job") {
			t.Fatalf("args %v: help output missing commands:\n%s", args, out)
		}
	}
}

func TestSubcommandHelpStillDispatches(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	if _, err := runGroup(t, r, "create", []string{"hyp-pytorch-job", "--help"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rec.calls != 1 {
		t.Fatal("named subcommand with --help should resolve the subcommand")
	}
}

func TestUnknownTokenWithoutDefault(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	_, err := runGroup(t, r, "list", []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), `unknown command "bogus"`) {
		t.Fatalf("got %v, want unknown command error", err)
	}
}

func TestBareGroupWithoutDefaultShowsHelp(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	out, err := runGroup(t, r, "list", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rec.calls != 0 {
		t.Fatal("bare group invocation should not construct implementations")
	}
	if !strings.Contains(out, "List training jobs") {
		t.Fatalf("help output missing descriptor help:\n%s", out)
	}
}

func TestGroupHelpHidesHiddenCommands(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	out, _ := runGroup(t, r, "create", []string{"--help"})
	if strings.Contains(out, "_default_create") {
		t.Fatalf("hidden command leaked into help:\n%s", out)
	}
}

func TestDispatchSurfacesResolutionFailure(t *testing.T) {
	r := registry.New()
	r.AddGroup(registry.Group{Key: "create", Help: "Create a resource"})
	cause := errors.New("no backend")
	r.Add(registry.Descriptor{Group: "create", Name: "broken", Factory: func() (*cobra.Command, error) {
		return nil, cause
	}})

	_, err := runGroup(t, r, "create", []string{"broken"})
	var unavailable *clierr.CommandUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want CommandUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost in %v", err)
	}
}

func TestFindCommandSkipsFlagTokens(t *testing.T) {
	rec, def := &recorder{}, &recorder{}
	r := newTestRegistry(rec, def)

	name, rest, found := findCommand(r, "create", []string{"--verbose", "hyp-pytorch-job", "--image", "img"})
	if !found || name != "hyp-pytorch-job" {
		t.Fatalf("findCommand = (%q, %v), want hyp-pytorch-job", name, found)
	}
	if want := []string{"--verbose", "--image", "img"}; !reflect.DeepEqual(rest, want) {
		t.Fatalf("rest = %v, want %v", rest, want)
	}
}
