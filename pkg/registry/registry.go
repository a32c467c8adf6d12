// Package registry holds the static command table of the hyp CLI.
//
// Descriptors carry everything help rendering needs (name, help text,
// visibility) without constructing any implementation. Construction is
// deferred behind a factory thunk that runs only when a command is actually
// executed: listing and describing a group never invokes a factory.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
)

// TopLevel is the namespace of flat top-level commands that are not nested
// under a group.
const TopLevel = "top-level"

// Factory defers construction of a command implementation until execution.
type Factory func() (*cobra.Command, error)

// Descriptor is one invocable leaf command. Its existence and help text are
// usable without ever calling Factory.
type Descriptor struct {
	Group   string
	Name    string
	Help    string
	Hidden  bool
	Factory Factory
}

// Group describes a command group. DefaultCommand, when set, names the
// command implicitly run when no subcommand token is present.
type Group struct {
	Key            string
	Help           string
	DefaultCommand string
}

// Entry is one (name, help) pair for help rendering.
type Entry struct {
	Name string
	Help string
}

// Registry is populated once at process start and read-only afterwards.
type Registry struct {
	groups   []Group
	commands map[string][]Descriptor
}

func New() *Registry {
	return &Registry{commands: make(map[string][]Descriptor)}
}

// AddGroup registers a command group. It panics on duplicate keys: the
// table is static and a duplicate is a programming error.
func (r *Registry) AddGroup(g Group) {
	for _, existing := range r.groups {
		if existing.Key == g.Key {
			panic(fmt.Sprintf("group %s already registered", g.Key))
		}
	}
	r.groups = append(r.groups, g)
}

// Add registers a leaf command descriptor under its group namespace.
func (r *Registry) Add(d Descriptor) {
	for _, existing := range r.commands[d.Group] {
		if existing.Name == d.Name {
			panic(fmt.Sprintf("command %s %s already registered", d.Group, d.Name))
		}
	}
	r.commands[d.Group] = append(r.commands[d.Group], d)
}

// Groups returns the registered groups in declaration order.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// GroupByKey returns the group registered under key.
func (r *Registry) GroupByKey(key string) (Group, bool) {
	for _, g := range r.groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// Commands returns all descriptors of a namespace, hidden included, in
// registration order.
func (r *Registry) Commands(group string) []Descriptor {
	ds := r.commands[group]
	out := make([]Descriptor, len(ds))
	copy(out, ds)
	return out
}

// ListCommands returns the visible command names of a group, sorted
// lexicographically for deterministic help output.
func (r *Registry) ListCommands(group string) []string {
	var names []string
	for _, d := range r.commands[group] {
		if d.Hidden {
			continue
		}
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Describe returns (name, help) pairs of a group's visible commands, sorted
// by name. Nothing here resolves a factory.
func (r *Registry) Describe(group string) []Entry {
	var entries []Entry
	for _, d := range r.commands[group] {
		if d.Hidden {
			continue
		}
		entries = append(entries, Entry{Name: d.Name, Help: d.Help})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Lookup returns the descriptor of (group, name), hidden included.
func (r *Registry) Lookup(group, name string) (Descriptor, bool) {
	for _, d := range r.commands[group] {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Resolve constructs the implementation of (group, name). Any failure,
// including a factory panic, is wrapped in CommandUnavailable carrying the
// original cause.
func (r *Registry) Resolve(group, name string) (cmd *cobra.Command, err error) {
	d, ok := r.Lookup(group, name)
	if !ok {
		return nil, &clierr.CommandUnavailable{
			Group: group, Name: name,
			Cause: errors.New("not registered"),
		}
	}
	if d.Factory == nil {
		return nil, &clierr.CommandUnavailable{
			Group: group, Name: name,
			Cause: errors.New("no implementation registered"),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			cmd = nil
			err = &clierr.CommandUnavailable{
				Group: group, Name: name,
				Cause: fmt.Errorf("panic constructing command: %v", rec),
			}
		}
	}()

	c, ferr := d.Factory()
	if ferr != nil {
		return nil, &clierr.CommandUnavailable{Group: group, Name: name, Cause: ferr}
	}
	if c == nil {
		return nil, &clierr.CommandUnavailable{
			Group: group, Name: name,
			Cause: errors.New("factory returned no command"),
		}
	}
	return c, nil
}

// Validate checks the table invariants: every group default command must
// exist in the group, hidden entries included.
func (r *Registry) Validate() error {
	for _, g := range r.groups {
		if g.DefaultCommand == "" {
			continue
		}
		if _, ok := r.Lookup(g.Key, g.DefaultCommand); !ok {
			return fmt.Errorf("group %s: default command %s not registered", g.Key, g.DefaultCommand)
		}
	}
	return nil
}
