package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/berthalloc/app"
	"github.com/kilianp07/berthalloc/config"
)

var simulateFlags struct {
	solution string
	samples  int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Sample the cost of a solution under random delays",
	Long: "Sample the cost of a solution under random arrival delays and longer handling. " +
		"Without --solution the initial allocation is profiled.",
	RunE: func(cmd *cobra.Command, args []string) error {
		override := func(cfg *config.Config) {
			applySolveFlags(cmd)(cfg)
			if simulateFlags.samples > 0 {
				cfg.Simulation.Samples = simulateFlags.samples
			}
		}
		return withService(cmd.Name(), override, func(ctx context.Context, svc *app.Service) error {
			c, err := svc.Simulate(ctx, simulateFlags.solution)
			if err != nil {
				return err
			}
			s := c.Profile.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "%s: mean %.1f std %.1f median %.1f p95 %.1f over %d samples\n",
				c.Label, s.Mean, s.Std, s.Median, s.P95, s.N)
			return nil
		})
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateFlags.solution, "solution", "s", "", "solution JSON written by solve (best.json)")
	f.IntVarP(&simulateFlags.samples, "samples", "n", 0, "number of samples overriding simulation.samples")
	f.StringVarP(&solveFlags.instance, "instance", "i", "", "instance file overriding instance.path")
	f.Int64Var(&solveFlags.seed, "seed", 0, "random seed overriding search.seed")
	f.StringVarP(&solveFlags.out, "out", "o", "", "output directory overriding output.dir")
	rootCmd.AddCommand(simulateCmd)
}
