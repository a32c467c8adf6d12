package dispatch

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/registry"
)

// NewRootCommand builds the top-level hyp command: the group dispatchers
// plus the flat top-level commands, merged into one sorted listing. The
// eager --version flag prints component versions and exits before any
// subcommand logic.
func NewRootCommand(r *registry.Registry, printVersion func(w io.Writer)) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:          "hyp",
		Short:        "HyperPod CLI for managing clusters, training jobs and inference endpoints",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolVar(&showVersion, "version", false, "Show version information")

	for _, g := range r.Groups() {
		root.AddCommand(NewGroupCommand(r, g))
	}
	for _, d := range r.Commands(registry.TopLevel) {
		root.AddCommand(newLazyShell(r, d))
	}
	return root
}

// newLazyShell wraps a flat top-level descriptor in a command whose name,
// help, and visibility come from the registry; the implementation is
// resolved only when the shell actually runs.
func newLazyShell(r *registry.Registry, d registry.Descriptor) *cobra.Command {
	return &cobra.Command{
		Use:                d.Name,
		Short:              d.Help,
		Hidden:             d.Hidden,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			impl, err := r.Resolve(registry.TopLevel, d.Name)
			if err != nil {
				return err
			}
			return forward(cmd, impl, args)
		},
	}
}
