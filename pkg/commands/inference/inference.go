// Package inference implements the hyp-jumpstart-endpoint and
// hyp-custom-endpoint operations.
package inference

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/client"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/k8s"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/options"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/output"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/customendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates/jumpstartendpoint"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/util"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// endpointLabel selects the pods serving one inference endpoint.
const endpointLabel = "hyperpod.dev/endpoint-name"

// operatorNamespace hosts the inference operator whose logs
// get-operator-logs streams.
const operatorNamespace = "hyperpod-inference-operator"

// NewJumpStartCreateCommand implements "hyp create hyp-jumpstart-endpoint".
func NewJumpStartCreateCommand() *cobra.Command {
	return options.NewCommand(options.Config[*jumpstartendpoint.JumpStartEndpoint]{
		Use:      templates.JumpStartCommand,
		Short:    "Create a SageMaker JumpStart model endpoint",
		Family:   templates.JumpStartFamily,
		Versions: jumpstartendpoint.Registry,
		Run: func(cmd *cobra.Command, req *options.Request[*jumpstartendpoint.JumpStartEndpoint]) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			res := &client.JumpStartEndpointResource{
				ResourceMeta: client.ResourceMeta{
					Name:      req.Name,
					Namespace: req.Namespace,
					Version:   req.Version,
				},
				Spec: req.Domain,
			}
			if err := cli.CreateJumpStartEndpoint(cmd.Context(), res); err != nil {
				return err
			}
			util.Logger.Infow("created jumpstart endpoint",
				"name", req.Name,
				"namespace", req.Namespace,
				"version", req.Version,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Created hyp-jumpstart-endpoint %q in namespace %q\n", req.Name, req.Namespace)
			return nil
		},
	})
}

// NewCustomCreateCommand implements "hyp create hyp-custom-endpoint".
func NewCustomCreateCommand() *cobra.Command {
	return options.NewCommand(options.Config[*customendpoint.CustomEndpoint]{
		Use:      templates.CustomCommand,
		Short:    "Create an endpoint for a custom model",
		Family:   templates.CustomFamily,
		Versions: customendpoint.Registry,
		Run: func(cmd *cobra.Command, req *options.Request[*customendpoint.CustomEndpoint]) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			res := &client.CustomEndpointResource{
				ResourceMeta: client.ResourceMeta{
					Name:      req.Name,
					Namespace: req.Namespace,
					Version:   req.Version,
				},
				Spec: req.Domain,
			}
			if err := cli.CreateCustomEndpoint(cmd.Context(), res); err != nil {
				return err
			}
			util.Logger.Infow("created custom endpoint",
				"name", req.Name,
				"namespace", req.Namespace,
				"version", req.Version,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Created hyp-custom-endpoint %q in namespace %q\n", req.Name, req.Namespace)
			return nil
		},
	})
}

// endpointRow is the table shape shared by both endpoint kinds.
func endpointRow(meta client.ResourceMeta) []string {
	return []string{meta.Name, meta.Namespace, meta.Status, humanize.Time(meta.CreatedAt)}
}

// NewJumpStartListCommand implements "hyp list hyp-jumpstart-endpoint".
func NewJumpStartListCommand() *cobra.Command {
	return newListCommand(templates.JumpStartCommand, "List SageMaker JumpStart model endpoints",
		func(cmd *cobra.Command, cli *client.HTTP, namespace, format string) error {
			eps, err := cli.ListJumpStartEndpoints(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			if format == output.FormatJSON {
				return output.JSON(cmd.OutOrStdout(), eps)
			}
			rows := make([][]string, 0, len(eps))
			for _, e := range eps {
				rows = append(rows, endpointRow(e.ResourceMeta))
			}
			output.Table(cmd.OutOrStdout(), []string{"name", "namespace", "status", "age"}, rows)
			return nil
		})
}

// NewCustomListCommand implements "hyp list hyp-custom-endpoint".
func NewCustomListCommand() *cobra.Command {
	return newListCommand(templates.CustomCommand, "List custom model endpoints",
		func(cmd *cobra.Command, cli *client.HTTP, namespace, format string) error {
			eps, err := cli.ListCustomEndpoints(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			if format == output.FormatJSON {
				return output.JSON(cmd.OutOrStdout(), eps)
			}
			rows := make([][]string, 0, len(eps))
			for _, e := range eps {
				rows = append(rows, endpointRow(e.ResourceMeta))
			}
			output.Table(cmd.OutOrStdout(), []string{"name", "namespace", "status", "age"}, rows)
			return nil
		})
}

func newListCommand(use, short string, run func(*cobra.Command, *client.HTTP, string, string) error) *cobra.Command {
	var (
		namespace string
		format    string
	)
	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			return run(cmd, cli, namespace, format)
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace to list endpoints in, all namespaces when empty")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "Output format, either 'json' or 'table'")
	return cmd
}

// NewJumpStartDescribeCommand implements "hyp describe hyp-jumpstart-endpoint".
func NewJumpStartDescribeCommand() *cobra.Command {
	return newEndpointCommand(templates.JumpStartCommand, "Describe a SageMaker JumpStart model endpoint",
		func(cmd *cobra.Command, cli *client.HTTP, namespace, name string) error {
			ep, err := cli.GetJumpStartEndpoint(cmd.Context(), namespace, name)
			if err != nil {
				return err
			}
			return describeYAML(cmd, ep)
		})
}

// NewCustomDescribeCommand implements "hyp describe hyp-custom-endpoint".
func NewCustomDescribeCommand() *cobra.Command {
	return newEndpointCommand(templates.CustomCommand, "Describe a custom model endpoint",
		func(cmd *cobra.Command, cli *client.HTTP, namespace, name string) error {
			ep, err := cli.GetCustomEndpoint(cmd.Context(), namespace, name)
			if err != nil {
				return err
			}
			return describeYAML(cmd, ep)
		})
}

// NewJumpStartDeleteCommand implements "hyp delete hyp-jumpstart-endpoint".
func NewJumpStartDeleteCommand() *cobra.Command {
	return newEndpointCommand(templates.JumpStartCommand, "Delete a SageMaker JumpStart model endpoint",
		func(cmd *cobra.Command, cli *client.HTTP, namespace, name string) error {
			if err := cli.DeleteJumpStartEndpoint(cmd.Context(), namespace, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted hyp-jumpstart-endpoint %q in namespace %q\n", name, namespace)
			return nil
		})
}

// NewCustomDeleteCommand implements "hyp delete hyp-custom-endpoint".
func NewCustomDeleteCommand() *cobra.Command {
	return newEndpointCommand(templates.CustomCommand, "Delete a custom model endpoint",
		func(cmd *cobra.Command, cli *client.HTTP, namespace, name string) error {
			if err := cli.DeleteCustomEndpoint(cmd.Context(), namespace, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted hyp-custom-endpoint %q in namespace %q\n", name, namespace)
			return nil
		})
}

func describeYAML(cmd *cobra.Command, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s", out)
	return nil
}

func newEndpointCommand(use, short string, run func(*cobra.Command, *client.HTTP, string, string) error) *cobra.Command {
	var (
		name      string
		namespace string
	)
	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			return run(cmd, cli, namespace, name)
		},
	}
	cmd.Flags().StringVar(&name, "metadata-name", "", "Name of the endpoint")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the endpoint")
	cmd.MarkFlagRequired("metadata-name") //nolint:errcheck
	return cmd
}

// NewInvokeCommand backs "hyp invoke" for both endpoint kinds. The platform
// routes invocations by endpoint name, so one implementation serves both.
func NewInvokeCommand(use string) func() *cobra.Command {
	return func() *cobra.Command {
		var (
			name      string
			namespace string
			body      string
		)
		cmd := &cobra.Command{
			Use:          use,
			Short:        "Invoke a deployed model endpoint",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if !json.Valid([]byte(body)) {
					return &clierr.InvalidJSON{Flag: "body", Cause: fmt.Errorf("not a JSON document")}
				}
				cli, err := client.NewFromContext("")
				if err != nil {
					return err
				}
				resp, err := cli.InvokeEndpoint(cmd.Context(), namespace, name, []byte(body))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(resp))
				return nil
			},
		}
		cmd.Flags().StringVar(&name, "metadata-name", "", "Name of the endpoint to invoke")
		cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the endpoint")
		cmd.Flags().StringVar(&body, "body", "", `Request body as a JSON string, e.g. '{"inputs": "hello"}'`)
		cmd.MarkFlagRequired("metadata-name") //nolint:errcheck
		cmd.MarkFlagRequired("body")          //nolint:errcheck
		return cmd
	}
}

// NewListPodsCommand lists the pods behind an endpoint; use selects which
// registry entry the command is mounted under.
func NewListPodsCommand(use string) func() *cobra.Command {
	return func() *cobra.Command {
		var (
			name       string
			namespace  string
			kubeconfig string
		)
		cmd := &cobra.Command{
			Use:          use,
			Short:        "List pods for a model endpoint",
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				cs, _, err := k8s.Clientset(kubeconfig)
				if err != nil {
					return err
				}
				pods, err := k8s.ListPods(cmd.Context(), cs, namespace, endpointLabel+"="+name)
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
		cmd.Flags().StringVar(&name, "metadata-name", "", "Name of the endpoint")
		cmd.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the endpoint")
		cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
		cmd.MarkFlagRequired("metadata-name") //nolint:errcheck
		return cmd
	}
}

// NewGetLogsCommand streams logs from one endpoint pod.
func NewGetLogsCommand(use string) func() *cobra.Command {
	return func() *cobra.Command {
		var (
			podName    string
			container  string
			namespace  string
			kubeconfig string
		)
		cmd := &cobra.Command{
			Use:          use,
			Short:        "Get logs for model endpoint pods",
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
}

// NewGetOperatorLogsCommand streams the inference operator logs.
func NewGetOperatorLogsCommand(use string) func() *cobra.Command {
	return func() *cobra.Command {
		var kubeconfig string
		cmd := &cobra.Command{
			Use:          use,
			Short:        "Get operator logs for model endpoints",
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
}
