// Package training implements the hyp-pytorch-job operations.
package training

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/client"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/k8s"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/options"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/output"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/pytorchjob"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/util"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// jobLabel selects the pods belonging to one training job.
const jobLabel = "hyperpod.dev/job-name"

// operatorNamespace hosts the training operator whose logs
// get-operator-logs streams.
const operatorNamespace = "hyperpod-training-operator"

// NewCreateCommand implements "hyp create hyp-pytorch-job". Its flag set is
// synthesized from the versioned pytorch job template schema.
func NewCreateCommand() *cobra.Command {
	return options.NewCommand(options.Config[*pytorchjob.PyTorchJob]{
		Use:      templates.PyTorchCommand,
		Short:    "Create a PyTorch training job",
		Family:   templates.PyTorchFamily,
		Versions: pytorchjob.Registry,
		Run: func(cmd *cobra.Command, req *options.Request[*pytorchjob.PyTorchJob]) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			res := &client.PyTorchJobResource{
				ResourceMeta: client.ResourceMeta{
					Name:      req.Name,
					Namespace: req.Namespace,
					Version:   req.Version,
				},
				Spec: req.Domain,
			}
			if err := cli.CreatePyTorchJob(cmd.Context(), res); err != nil {
				return err
			}
			util.Logger.Infow("created pytorch job",
				"name", req.Name,
				"namespace", req.Namespace,
				"version", req.Version,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Created hyp-pytorch-job %q in namespace %q\n", req.Name, req.Namespace)
			return nil
		},
	})
}

// NewListCommand implements "hyp list hyp-pytorch-job".
func NewListCommand() *cobra.Command {
	var (
		namespace string
		format    string
	)
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand,
		Short:        "List PyTorch training jobs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			jobs, err := cli.ListPyTorchJobs(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			if format == output.FormatJSON {
				return output.JSON(cmd.OutOrStdout(), jobs)
			}
			rows := make([][]string, 0, len(jobs))
			for _, j := range jobs {
				rows = append(rows, []string{j.Name, j.Namespace, j.Status, humanize.Time(j.CreatedAt)})
			}
			output.Table(cmd.OutOrStdout(), []string{"name", "namespace", "status", "age"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace to list jobs in, all namespaces when empty")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "Output format, either 'json' or 'table'")
	return cmd
}

// NewDescribeCommand implements "hyp describe hyp-pytorch-job".
func NewDescribeCommand() *cobra.Command {
	var (
		name      string
		namespace string
	)
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand,
		Short:        "Describe a PyTorch training job",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			job, err := cli.GetPyTorchJob(cmd.Context(), namespace, name)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(job)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "metadata-name", "", "Name of the training job")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the training job")
	cmd.MarkFlagRequired("metadata-name") //nolint:errcheck
	return cmd
}

// NewDeleteCommand implements "hyp delete hyp-pytorch-job".
func NewDeleteCommand() *cobra.Command {
	var (
		name      string
		namespace string
	)
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand,
		Short:        "Delete a PyTorch training job",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			if err := cli.DeletePyTorchJob(cmd.Context(), namespace, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted hyp-pytorch-job %q in namespace %q\n", name, namespace)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "metadata-name", "", "Name of the training job")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the training job")
	cmd.MarkFlagRequired("metadata-name") //nolint:errcheck
	return cmd
}

// NewListPodsCommand implements "hyp list-pods hyp-pytorch-job".
func NewListPodsCommand() *cobra.Command {
	var (
		name       string
		namespace  string
		kubeconfig string
	)
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand,
		Short:        "List pods for PyTorch training jobs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, _, err := k8s.Clientset(kubeconfig)
			if err != nil {
				return err
			}
			pods, err := k8s.ListPods(cmd.Context(), cs, namespace, jobLabel+"="+name)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(pods))
			for _, p := range pods {
				rows = append(rows, []string{p.Name, p.Namespace, string(p.Status.Phase), p.Spec.NodeName})
			}
			output.Table(cmd.OutOrStdout(), []string{"pod", "namespace", "phase", "node"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "metadata-name", "", "Name of the training job")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the training job")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	cmd.MarkFlagRequired("metadata-name") //nolint:errcheck
	return cmd
}

// NewGetLogsCommand implements "hyp get-logs hyp-pytorch-job".
func NewGetLogsCommand() *cobra.Command {
	var (
		podName    string
		container  string
		namespace  string
		kubeconfig string
	)
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand,
		Short:        "Get logs for PyTorch training job pods",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, _, err := k8s.Clientset(kubeconfig)
			if err != nil {
				return err
			}
			return k8s.PodLogs(cmd.Context(), cs, namespace, podName, container, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&podName, "pod-name", "", "Name of the pod to fetch logs for")
	cmd.Flags().StringVar(&container, "container", "", "Container to fetch logs for, first container when empty")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the pod")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	cmd.MarkFlagRequired("pod-name") //nolint:errcheck
	return cmd
}

// NewGetOperatorLogsCommand implements "hyp get-operator-logs hyp-pytorch-job".
func NewGetOperatorLogsCommand() *cobra.Command {
	var kubeconfig string
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand,
		Short:        "Get operator logs for PyTorch training jobs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, _, err := k8s.Clientset(kubeconfig)
			if err != nil {
				return err
			}
			pods, err := k8s.ListPods(cmd.Context(), cs, operatorNamespace, "control-plane=controller-manager")
			if err != nil {
				return err
			}
			if len(pods) == 0 {
				return fmt.Errorf("no operator pods found in namespace %q", operatorNamespace)
			}
			for _, p := range pods {
				if err := k8s.PodLogs(cmd.Context(), cs, operatorNamespace, p.Name, "", cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	return cmd
}

// NewExecCommand implements "hyp exec hyp-pytorch-job". Tokens after "--"
// form the command run inside the pod.
func NewExecCommand() *cobra.Command {
	var (
		podName    string
		container  string
		namespace  string
		kubeconfig string
	)
	cmd := &cobra.Command{
		Use:          templates.PyTorchCommand + " -- COMMAND [args...]",
		Short:        "Execute commands in PyTorch training job pods",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, cfg, err := k8s.Clientset(kubeconfig)
			if err != nil {
				return err
			}
			return k8s.Exec(cmd.Context(), cs, cfg, namespace, podName, container, args,
				os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&podName, "pod-name", "", "Name of the pod to exec into")
	cmd.Flags().StringVar(&container, "container", "", "Container to exec into, first container when empty")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the pod")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	cmd.MarkFlagRequired("pod-name") //nolint:errcheck
	return cmd
}
