// Package clusterstack implements the cluster-stack lifecycle operations
// and the cluster update command.
package clusterstack

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/client"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/output"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// NewCreateCommand implements "hyp create cluster-stack".
func NewCreateCommand() *cobra.Command {
	var (
		name     string
		region   string
		template string
	)
	cmd := &cobra.Command{
		Use:          "cluster-stack",
		Short:        "Create a cluster CloudFormation stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			stack := &client.ClusterStack{
				Name:     name,
				Region:   region,
				Template: template,
			}
			if err := cli.CreateClusterStack(cmd.Context(), stack); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created cluster-stack %q\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "stack-name", "", "Name of the stack to create")
	cmd.Flags().StringVar(&region, "region", "", "Region to create the stack in, the default region when empty")
	cmd.Flags().StringVar(&template, "template", "", "Stack template to provision from")
	cmd.MarkFlagRequired("stack-name") //nolint:errcheck
	return cmd
}

// NewListCommand implements "hyp list cluster-stack".
func NewListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:          "cluster-stack",
		Short:        "List cluster CloudFormation stacks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			stacks, err := cli.ListClusterStacks(cmd.Context())
			if err != nil {
				return err
			}
			if format == output.FormatJSON {
				return output.JSON(cmd.OutOrStdout(), stacks)
			}
			rows := make([][]string, 0, len(stacks))
			for _, s := range stacks {
				rows = append(rows, []string{s.Name, s.Region, s.Status, humanize.Time(s.CreatedAt)})
			}
			output.Table(cmd.OutOrStdout(), []string{"name", "region", "status", "age"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "Output format, either 'json' or 'table'")
	return cmd
}

// NewDescribeCommand implements "hyp describe cluster-stack".
func NewDescribeCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:          "cluster-stack",
		Short:        "Describe a cluster CloudFormation stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			stack, err := cli.GetClusterStack(cmd.Context(), name)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(stack)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "stack-name", "", "Name of the stack")
	cmd.MarkFlagRequired("stack-name") //nolint:errcheck
	return cmd
}

// NewDeleteCommand implements "hyp delete cluster-stack".
func NewDeleteCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:          "cluster-stack",
		Short:        "Delete a cluster CloudFormation stack",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			if err := cli.DeleteClusterStack(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted cluster-stack %q\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "stack-name", "", "Name of the stack")
	cmd.MarkFlagRequired("stack-name") //nolint:errcheck
	return cmd
}

// NewUpdateClusterCommand implements "hyp update cluster". The patch only
// carries the fields the user set.
func NewUpdateClusterCommand() *cobra.Command {
	var (
		name           string
		nodeRecovery   string
		instanceGroups string
	)
	cmd := &cobra.Command{
		Use:          "cluster",
		Short:        "Update an existing cluster configuration",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]interface{}{}
			if nodeRecovery != "" {
				if nodeRecovery != "Automatic" && nodeRecovery != "None" {
					return fmt.Errorf("invalid value %q for --node-recovery (choose from Automatic, None)", nodeRecovery)
				}
				patch["node_recovery"] = nodeRecovery
			}
			if instanceGroups != "" {
				var groups interface{}
				if err := json.Unmarshal([]byte(instanceGroups), &groups); err != nil {
					return &clierr.InvalidJSON{Flag: "instance-groups", Cause: err}
				}
				patch["instance_groups"] = groups
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update, set --node-recovery or --instance-groups")
			}
			cli, err := client.NewFromContext("")
			if err != nil {
				return err
			}
			if err := cli.UpdateCluster(cmd.Context(), name, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated cluster %q\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "cluster-name", "", "Name of the cluster to update")
	cmd.Flags().StringVar(&nodeRecovery, "node-recovery", "", "Node recovery mode, either 'Automatic' or 'None'")
	cmd.Flags().StringVar(&instanceGroups, "instance-groups", "", `Instance groups as a JSON array, e.g. '[{"name": "group-1", "instance_type": "ml.p5.48xlarge", "instance_count": 8}]'`)
	cmd.MarkFlagRequired("cluster-name") //nolint:errcheck
	return cmd
}
