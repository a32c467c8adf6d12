// Package cli assembles the command table and the root command.
//
// Leaf implementations are registered as factories and stay unbuilt until an
// invocation (or a failed dispatch) actually needs one. Group help renders
// from the table alone.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/commands/cluster"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/commands/clusterstack"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/commands/inference"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/commands/initialize"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/commands/training"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/dispatch"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/registry"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/schema"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/customendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/jumpstartendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/pytorchjob"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/version"
)

// simple adapts a plain constructor to the registry factory shape.
func simple(build func() *cobra.Command) registry.Factory {
	return func() (*cobra.Command, error) {
		return build(), nil
	}
}

// NewRegistry builds the full command table.
func NewRegistry() *registry.Registry {
	r := registry.New()

	r.AddGroup(registry.Group{Key: "create", Help: "Create a resource", DefaultCommand: "_default_create"})
	r.AddGroup(registry.Group{Key: "list", Help: "List resources"})
	r.AddGroup(registry.Group{Key: "describe", Help: "Describe a resource"})
	r.AddGroup(registry.Group{Key: "delete", Help: "Delete a resource"})
	r.AddGroup(registry.Group{Key: "update", Help: "Update a resource"})
	r.AddGroup(registry.Group{Key: "list-pods", Help: "List pods backing a resource"})
	r.AddGroup(registry.Group{Key: "get-logs", Help: "Get pod logs for a resource"})
	r.AddGroup(registry.Group{Key: "get-operator-logs", Help: "Get operator logs for a resource kind"})
	r.AddGroup(registry.Group{Key: "invoke", Help: "Invoke a deployed model endpoint"})
	r.AddGroup(registry.Group{Key: "exec", Help: "Execute commands inside resource pods"})

	r.Add(registry.Descriptor{Group: "create", Name: templates.PyTorchCommand, Help: "Create a PyTorch training job", Factory: simple(training.NewCreateCommand)})
	r.Add(registry.Descriptor{Group: "create", Name: templates.JumpStartCommand, Help: "Create a SageMaker JumpStart model endpoint", Factory: simple(inference.NewJumpStartCreateCommand)})
	r.Add(registry.Descriptor{Group: "create", Name: templates.CustomCommand, Help: "Create an endpoint for a custom model", Factory: simple(inference.NewCustomCreateCommand)})
	r.Add(registry.Descriptor{Group: "create", Name: "cluster-stack", Help: "Create a cluster CloudFormation stack", Factory: simple(clusterstack.NewCreateCommand)})
	r.Add(registry.Descriptor{Group: "create", Name: "_default_create", Help: "Create the resource described by the scaffold", Hidden: true, Factory: simple(initialize.NewDefaultCreateCommand)})

	r.Add(registry.Descriptor{Group: "list", Name: templates.PyTorchCommand, Help: "List PyTorch training jobs", Factory: simple(training.NewListCommand)})
	r.Add(registry.Descriptor{Group: "list", Name: templates.JumpStartCommand, Help: "List SageMaker JumpStart model endpoints", Factory: simple(inference.NewJumpStartListCommand)})
	r.Add(registry.Descriptor{Group: "list", Name: templates.CustomCommand, Help: "List custom model endpoints", Factory: simple(inference.NewCustomListCommand)})
	r.Add(registry.Descriptor{Group: "list", Name: "cluster-stack", Help: "List cluster CloudFormation stacks", Factory: simple(clusterstack.NewListCommand)})

	r.Add(registry.Descriptor{Group: "describe", Name: templates.PyTorchCommand, Help: "Describe a PyTorch training job", Factory: simple(training.NewDescribeCommand)})
	r.Add(registry.Descriptor{Group: "describe", Name: templates.JumpStartCommand, Help: "Describe a SageMaker JumpStart model endpoint", Factory: simple(inference.NewJumpStartDescribeCommand)})
	r.Add(registry.Descriptor{Group: "describe", Name: templates.CustomCommand, Help: "Describe a custom model endpoint", Factory: simple(inference.NewCustomDescribeCommand)})
	r.Add(registry.Descriptor{Group: "describe", Name: "cluster-stack", Help: "Describe a cluster CloudFormation stack", Factory: simple(clusterstack.NewDescribeCommand)})

	r.Add(registry.Descriptor{Group: "delete", Name: templates.PyTorchCommand, Help: "Delete a PyTorch training job", Factory: simple(training.NewDeleteCommand)})
	r.Add(registry.Descriptor{Group: "delete", Name: templates.JumpStartCommand, Help: "Delete a SageMaker JumpStart model endpoint", Factory: simple(inference.NewJumpStartDeleteCommand)})
	r.Add(registry.Descriptor{Group: "delete", Name: templates.CustomCommand, Help: "Delete a custom model endpoint", Factory: simple(inference.NewCustomDeleteCommand)})
	r.Add(registry.Descriptor{Group: "delete", Name: "cluster-stack", Help: "Delete a cluster CloudFormation stack", Factory: simple(clusterstack.NewDeleteCommand)})

	r.Add(registry.Descriptor{Group: "update", Name: "cluster", Help: "Update an existing cluster configuration", Factory: simple(clusterstack.NewUpdateClusterCommand)})

	r.Add(registry.Descriptor{Group: "list-pods", Name: templates.PyTorchCommand, Help: "List pods for PyTorch training jobs", Factory: simple(training.NewListPodsCommand)})
	r.Add(registry.Descriptor{Group: "list-pods", Name: templates.JumpStartCommand, Help: "List pods for a SageMaker JumpStart model endpoint", Factory: simple(inference.NewListPodsCommand(templates.JumpStartCommand))})
	r.Add(registry.Descriptor{Group: "list-pods", Name: templates.CustomCommand, Help: "List pods for a custom model endpoint", Factory: simple(inference.NewListPodsCommand(templates.CustomCommand))})

	r.Add(registry.Descriptor{Group: "get-logs", Name: templates.PyTorchCommand, Help: "Get logs for PyTorch training job pods", Factory: simple(training.NewGetLogsCommand)})
	r.Add(registry.Descriptor{Group: "get-logs", Name: templates.JumpStartCommand, Help: "Get logs for SageMaker JumpStart endpoint pods", Factory: simple(inference.NewGetLogsCommand(templates.JumpStartCommand))})
	r.Add(registry.Descriptor{Group: "get-logs", Name: templates.CustomCommand, Help: "Get logs for custom endpoint pods", Factory: simple(inference.NewGetLogsCommand(templates.CustomCommand))})

	r.Add(registry.Descriptor{Group: "get-operator-logs", Name: templates.PyTorchCommand, Help: "Get operator logs for PyTorch training jobs", Factory: simple(training.NewGetOperatorLogsCommand)})
	r.Add(registry.Descriptor{Group: "get-operator-logs", Name: templates.JumpStartCommand, Help: "Get operator logs for SageMaker JumpStart endpoints", Factory: simple(inference.NewGetOperatorLogsCommand(templates.JumpStartCommand))})
	r.Add(registry.Descriptor{Group: "get-operator-logs", Name: templates.CustomCommand, Help: "Get operator logs for custom endpoints", Factory: simple(inference.NewGetOperatorLogsCommand(templates.CustomCommand))})

	// Both endpoint kinds invoke through the same platform route.
	r.Add(registry.Descriptor{Group: "invoke", Name: templates.JumpStartCommand, Help: "Invoke a SageMaker JumpStart model endpoint", Factory: simple(inference.NewInvokeCommand(templates.JumpStartCommand))})
	r.Add(registry.Descriptor{Group: "invoke", Name: templates.CustomCommand, Help: "Invoke a custom model endpoint", Factory: simple(inference.NewInvokeCommand(templates.CustomCommand))})

	r.Add(registry.Descriptor{Group: "exec", Name: templates.PyTorchCommand, Help: "Execute commands in PyTorch training job pods", Factory: simple(training.NewExecCommand)})

	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "init", Help: "Initialize a template scaffold in the working directory", Factory: simple(initialize.NewInitCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "reset", Help: "Reset the scaffold values to the template defaults", Factory: simple(initialize.NewResetCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "configure", Help: "Set values in the scaffold", Factory: simple(initialize.NewConfigureCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "validate", Help: "Validate the scaffold against its template schema", Factory: simple(initialize.NewValidateCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "list-cluster", Help: "List clusters accessible from the current AWS credentials", Factory: simple(cluster.NewListClusterCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "set-cluster-context", Help: "Connect the kubeconfig to a cluster", Factory: simple(cluster.NewSetClusterContextCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "get-cluster-context", Help: "Show the cluster the kubeconfig currently points at", Factory: simple(cluster.NewGetClusterContextCommand)})
	r.Add(registry.Descriptor{Group: registry.TopLevel, Name: "get-monitoring", Help: "Show the monitoring services installed in the cluster", Factory: simple(cluster.NewGetMonitoringCommand)})

	return r
}

// PrintVersion writes the CLI build info plus the newest schema version of
// every template family.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "hyp version %s\n", version.VersionInfo.Version)
	if version.VersionInfo.GitCommit != "" {
		fmt.Fprintf(w, "  git commit: %s\n", version.VersionInfo.GitCommit)
	}
	families := []struct {
		name string
		ver  func() (string, error)
	}{
		{templates.PyTorchFamily, func() (string, error) { return schema.Latest(pytorchjob.Registry) }},
		{templates.JumpStartFamily, func() (string, error) { return schema.Latest(jumpstartendpoint.Registry) }},
		{templates.CustomFamily, func() (string, error) { return schema.Latest(customendpoint.Registry) }},
	}
	for _, f := range families {
		v, err := f.ver()
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", f.name, v)
	}
}

// New builds the fully wired root command.
func New() (*cobra.Command, error) {
	r := NewRegistry()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return dispatch.NewRootCommand(r, PrintVersion), nil
}
