// Package cluster implements the EKS cluster discovery and kubeconfig
// context operations.
package cluster

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/k8s"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/output"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/util"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// managedTag marks EKS clusters provisioned by the platform. Clusters
// without it are skipped by list-cluster.
const managedTag = "hyperpod.dev/managed"

func awsConfig(ctx context.Context, region string) (aws.Config, error) {
	if region != "" {
		return config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}
	return config.LoadDefaultConfig(ctx)
}

func listManagedClusters(ctx context.Context, cfg aws.Config) ([]ekstypes.Cluster, error) {
	svc := eks.NewFromConfig(cfg)
	var (
		names []string
		next  *string
	)
	for {
		out, err := svc.ListClusters(ctx, &eks.ListClustersInput{NextToken: next})
		if err != nil {
			return nil, err
		}
		names = append(names, out.Clusters...)
		if out.NextToken == nil {
			break
		}
		next = out.NextToken
	}
	var clusters []ekstypes.Cluster
	for _, name := range names {
		out, err := svc.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
		if err != nil {
			return nil, err
		}
		if _, ok := out.Cluster.Tags[managedTag]; !ok {
			continue
		}
		clusters = append(clusters, *out.Cluster)
	}
	return clusters, nil
}

// NewListClusterCommand implements "hyp list-cluster".
func NewListClusterCommand() *cobra.Command {
	var (
		region string
		format string
	)
	cmd := &cobra.Command{
		Use:          "list-cluster",
		Short:        "List clusters accessible from the current AWS credentials",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := awsConfig(ctx, region)
			if err != nil {
				return err
			}
			ident, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
			if err != nil {
				return fmt.Errorf("could not resolve AWS caller identity: %w", err)
			}
			util.Logger.Debugw("listing clusters", "account", aws.ToString(ident.Account), "region", cfg.Region)
			clusters, err := listManagedClusters(ctx, cfg)
			if err != nil {
				return err
			}
			if format == output.FormatJSON {
				return output.JSON(cmd.OutOrStdout(), clusters)
			}
			rows := make([][]string, 0, len(clusters))
			for _, c := range clusters {
				rows = append(rows, []string{
					aws.ToString(c.Name),
					string(c.Status),
					aws.ToString(c.Version),
					aws.ToString(c.Endpoint),
				})
			}
			output.Table(cmd.OutOrStdout(), []string{"name", "status", "kubernetes version", "endpoint"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "AWS region to list clusters in, the default region when empty")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "Output format, either 'json' or 'table'")
	return cmd
}

// NewSetClusterContextCommand implements "hyp set-cluster-context". When no
// cluster name is given the managed clusters are offered interactively.
func NewSetClusterContextCommand() *cobra.Command {
	var (
		name       string
		region     string
		kubeconfig string
	)
	cmd := &cobra.Command{
		Use:          "set-cluster-context",
		Short:        "Connect the kubeconfig to a cluster",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := awsConfig(ctx, region)
			if err != nil {
				return err
			}
			if name == "" {
				clusters, err := listManagedClusters(ctx, cfg)
				if err != nil {
					return err
				}
				if len(clusters) == 0 {
					return fmt.Errorf("no clusters found, provide --cluster-name or check the AWS region")
				}
				names := make([]string, 0, len(clusters))
				for _, c := range clusters {
					names = append(names, aws.ToString(c.Name))
				}
				prompt := promptui.Select{
					Label: "Select a cluster",
					Items: names,
				}
				_, picked, err := prompt.Run()
				if err != nil {
					return err
				}
				name = picked
			}
			out, err := eks.NewFromConfig(cfg).DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
			if err != nil {
				return err
			}
			caData, err := base64.StdEncoding.DecodeString(aws.ToString(out.Cluster.CertificateAuthority.Data))
			if err != nil {
				return fmt.Errorf("could not decode cluster certificate authority: %w", err)
			}
			execArgs := []string{"aws", "eks", "get-token", "--cluster-name", name}
			if region != "" {
				execArgs = append(execArgs, "--region", region)
			}
			if err := k8s.SetContext(kubeconfig, name, aws.ToString(out.Cluster.Endpoint), caData, execArgs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched kubeconfig context to cluster %q\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "cluster-name", "", "Name of the cluster to connect to, prompted when empty")
	cmd.Flags().StringVar(&region, "region", "", "AWS region of the cluster, the default region when empty")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file to update")
	return cmd
}

// NewGetClusterContextCommand implements "hyp get-cluster-context".
func NewGetClusterContextCommand() *cobra.Command {
	var kubeconfig string
	cmd := &cobra.Command{
		Use:          "get-cluster-context",
		Short:        "Show the cluster the kubeconfig currently points at",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := k8s.CurrentContext(kubeconfig)
			if err != nil {
				return err
			}
			if current == "" {
				return fmt.Errorf("no current context set, run 'hyp set-cluster-context' first")
			}
			fmt.Fprintln(cmd.OutOrStdout(), current)
			return nil
		},
	}
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	return cmd
}

// monitoringServices are the observability components installed alongside a
// cluster, keyed by the in-cluster service they expose.
var monitoringServices = []struct {
	Namespace string
	Service   string
	Purpose   string
}{
	{"hyperpod-monitoring", "grafana", "Dashboards"},
	{"hyperpod-monitoring", "prometheus-server", "Metrics storage"},
	{"hyperpod-monitoring", "alertmanager", "Alert routing"},
	{"kube-system", "metrics-server", "Resource metrics API"},
}

// NewGetMonitoringCommand implements "hyp get-monitoring".
func NewGetMonitoringCommand() *cobra.Command {
	var kubeconfig string
	cmd := &cobra.Command{
		Use:          "get-monitoring",
		Short:        "Show the monitoring services installed in the cluster",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := k8s.CurrentContext(kubeconfig)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Monitoring services for cluster context %q:\n", current)
			rows := make([][]string, 0, len(monitoringServices))
			for _, s := range monitoringServices {
				rows = append(rows, []string{s.Namespace, s.Service, s.Purpose})
			}
			output.Table(cmd.OutOrStdout(), []string{"namespace", "service", "purpose"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to the kubeconfig file")
	return cmd
}
