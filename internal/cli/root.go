// Package cli implements simctl, the operator CLI for a running simulator.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/developer-vif/openshift-workload-simulator/internal/client"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type app struct {
	server  string
	output  string
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCommand builds the simctl command tree on the process streams.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithIO(os.Stdout, os.Stderr)
}

// NewRootCommandWithIO builds the simctl command tree writing to out and errOut.
func NewRootCommandWithIO(out, errOut io.Writer) *cobra.Command {
	a := &app{stdout: out, stderr: errOut}

	cmd := &cobra.Command{
		Use:           "simctl",
		Short:         "Drive a running openshift workload simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch a.output {
			case outputTable, outputJSON:
				return nil
			default:
				return fmt.Errorf("unsupported output %q (want %s or %s)", a.output, outputTable, outputJSON)
			}
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&a.server, "server", client.DefaultServer, "simulator API address")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format: table or json")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "per-command timeout")

	cmd.AddCommand(
		newStatusCmd(a),
		newSummaryCmd(a),
		newNodesCmd(a),
		newNamespaceCmd(a),
		newDeploymentCmd(a),
		newWorkloadCmd(a),
		newApplyCmd(a),
	)
	return cmd
}

func (a *app) client() *client.Client {
	return client.New(a.server)
}

func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

func (a *app) printer() *printer {
	return &printer{w: a.stdout, json: a.output == outputJSON}
}

// run executes one mutating call and prints its response.
func (a *app) run(cmd *cobra.Command, call func(ctx context.Context) (*model.ActionResponse, error)) error {
	ctx, cancel := a.commandContext(cmd)
	defer cancel()
	resp, err := call(ctx)
	if err != nil {
		return err
	}
	return a.printer().Action(resp)
}
