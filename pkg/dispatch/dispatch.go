// Package dispatch implements the lazy command dispatcher of the hyp CLI.
//
// Group commands enumerate and describe their children purely from the
// command registry; an implementation is constructed only at the moment a
// command is actually executed. Post-resolution the dispatcher is a thin
// forwarding shim: argument parsing, usage, and invocation belong entirely
// to the resolved command.
package dispatch

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/registry"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// NewGroupCommand builds the dispatcher command for one registry group.
func NewGroupCommand(r *registry.Registry, g registry.Group) *cobra.Command {
	cmd := &cobra.Command{
		Use:                g.Key,
		Short:              g.Help,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(r, g, cmd, args)
		},
	}
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		renderGroupHelp(c.OutOrStdout(), r, g)
	})
	return cmd
}

func dispatch(r *registry.Registry, g registry.Group, cmd *cobra.Command, args []string) error {
	name, rest, found := findCommand(r, g.Key, args)
	if !found {
		switch {
		case hasHelpToken(args):
			renderGroupHelp(cmd.OutOrStdout(), r, g)
			return nil
		case g.DefaultCommand != "":
			// Default-subcommand rule: no recognized subcommand and no
			// help request, so the group's default command is implicitly
			// prepended to the token stream.
			name, rest = g.DefaultCommand, args
		default:
			if tok := firstNonFlag(args); tok != "" {
				return fmt.Errorf("unknown command %q for %q", tok, cmd.CommandPath())
			}
			renderGroupHelp(cmd.OutOrStdout(), r, g)
			return nil
		}
	}

	impl, err := r.Resolve(g.Key, name)
	if err != nil {
		return err
	}
	return forward(cmd, impl, rest)
}

// forward hands the remaining tokens to the resolved implementation and
// lets it do its own parsing, help formatting, and invocation.
func forward(parent, impl *cobra.Command, args []string) error {
	impl.SilenceErrors = true
	impl.SilenceUsage = true
	impl.SetOut(parent.OutOrStdout())
	impl.SetErr(parent.ErrOrStderr())
	impl.SetArgs(args)
	return impl.Execute()
}

// findCommand returns the first non-flag token matching a known command
// name of the group, hidden commands included, with the remaining tokens.
func findCommand(r *registry.Registry, group string, args []string) (string, []string, bool) {
	for i, a := range args {
		if strings.HasPrefix(a, "-") {
			continue
		}
		if _, ok := r.Lookup(group, a); ok {
			rest := make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+1:]...)
			return a, rest, true
		}
	}
	return "", nil, false
}

func hasHelpToken(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" {
			return true
		}
	}
	return false
}

func firstNonFlag(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

// renderGroupHelp writes the group help screen from registry descriptors
// alone, so a pure --help pass never constructs an implementation.
func renderGroupHelp(w io.Writer, r *registry.Registry, g registry.Group) {
	fmt.Fprintf(w, "%s\n\n", g.Help)
	fmt.Fprintf(w, "Usage:\n  hyp %s [command]\n\n", g.Key)

	entries := r.Describe(g.Key)
	if len(entries) == 0 {
		return
	}
	width := 0
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}
	fmt.Fprintf(w, "Available Commands:\n")
	for _, e := range entries {
		fmt.Fprintf(w, "  %-*s %s\n", width+2, e.Name, e.Help)
	}
	fmt.Fprintf(w, "\nFlags:\n  -h, --help   help for %s\n", g.Key)
}
