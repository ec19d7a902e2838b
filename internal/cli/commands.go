package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/developer-vif/openshift-workload-simulator/internal/manifest"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show nodes, namespaces, deployments and the cluster summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			s, err := a.client().Status(ctx)
			if err != nil {
				return err
			}
			return a.printer().Status(s)
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate cluster capacity and allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			s, err := a.client().Summary(ctx)
			if err != nil {
				return err
			}
			return a.printer().Summary(s)
		},
	}
}

func newNodesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage the worker pool",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set COUNT",
		Short: "Resize the worker pool to COUNT nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid node count %q", args[0])
			}
			return a.run(cmd, func(ctx context.Context) (*model.ActionResponse, error) {
				return a.client().SetNodeCount(ctx, count)
			})
		},
	})
	return cmd
}

func newNamespaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns"},
		Short:   "Manage namespaces",
	}

	var cpu, memory string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a namespace with a CPU and memory quota",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cpuQ, memQ, err := parseResources(cpu, memory)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) (*model.ActionResponse, error) {
				return a.client().CreateNamespace(ctx, args[0], cpuQ.Cores(), memQ.GB())
			})
		},
	}
	create.Flags().StringVar(&cpu, "cpu", "", "CPU quota, e.g. 40 or 8000m")
	create.Flags().StringVar(&memory, "memory", "", "memory quota, e.g. 200Gi or 64 (GB)")
	_ = create.MarkFlagRequired("cpu")
	_ = create.MarkFlagRequired("memory")

	cmd.AddCommand(create)
	return cmd
}

func newDeploymentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"deploy"},
		Short:   "Manage deployments",
	}

	var (
		namespace   string
		replicas    int
		cpu, memory string
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cpuQ, memQ, err := parseResources(cpu, memory)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context) (*model.ActionResponse, error) {
				return a.client().AddDeployment(ctx, args[0], namespace, replicas, cpuQ.Cores(), memQ.GB())
			})
		},
	}
	add.Flags().StringVarP(&namespace, "namespace", "n", "", "namespace to create the deployment in")
	add.Flags().IntVar(&replicas, "replicas", 1, "replica count")
	add.Flags().StringVar(&cpu, "cpu", "", "CPU request per replica, e.g. 500m")
	add.Flags().StringVar(&memory, "memory", "", "memory request per replica, e.g. 2Gi")
	_ = add.MarkFlagRequired("namespace")
	_ = add.MarkFlagRequired("cpu")
	_ = add.MarkFlagRequired("memory")

	scale := &cobra.Command{
		Use:   "scale NAME REPLICAS",
		Short: "Change a deployment's replica count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid replica count %q", args[1])
			}
			return a.run(cmd, func(ctx context.Context) (*model.ActionResponse, error) {
				return a.client().ScaleDeployment(ctx, args[0], n)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) (*model.ActionResponse, error) {
				return a.client().DeleteDeployment(ctx, args[0])
			})
		},
	}

	cmd.AddCommand(add, scale, del)
	return cmd
}

func newWorkloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Manage generated workload",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set FACTOR",
		Short: "Replace all workload with generated load for FACTOR in [0, 1]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid workload factor %q", args[0])
			}
			return a.run(cmd, func(ctx context.Context) (*model.ActionResponse, error) {
				return a.client().SetWorkloadFactor(ctx, f)
			})
		},
	})
	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var filename string
	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Apply a YAML cluster manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := manifest.Load(filename)
			if err != nil {
				return err
			}
			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			res, err := manifest.Apply(ctx, a.client().Applier(), m)
			if a.output == outputJSON {
				if perr := a.printer().JSON(res); perr != nil {
					return perr
				}
			} else {
				fmt.Fprintf(a.stdout, "applied %d/%d steps from %s\n", res.Applied, res.Total, filename)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&filename, "filename", "f", "", "manifest file to apply")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}

func parseResources(cpu, memory string) (manifest.Quantity, manifest.Quantity, error) {
	cpuQ, err := manifest.ParseQuantity(cpu)
	if err != nil {
		return manifest.Quantity{}, manifest.Quantity{}, fmt.Errorf("--cpu: %w", err)
	}
	memQ, err := manifest.ParseQuantity(memory)
	if err != nil {
		return manifest.Quantity{}, manifest.Quantity{}, fmt.Errorf("--memory: %w", err)
	}
	return cpuQ, memQ, nil
}
