package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/berthalloc/app"
	"github.com/kilianp07/berthalloc/config"
)

var benchRuns int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Repeat the searches over several seeds and summarise them",
	RunE: func(cmd *cobra.Command, args []string) error {
		override := func(cfg *config.Config) {
			applySolveFlags(cmd)(cfg)
			if benchRuns > 0 {
				cfg.Bench.Runs = benchRuns
			}
		}
		return withService(cmd.Name(), override, func(ctx context.Context, svc *app.Service) error {
			rep, err := svc.Bench(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-10s %6s %12s %12s %12s %10s\n", "algorithm", "runs", "best", "mean", "std", "ms/run")
			for _, r := range rep.Records {
				fmt.Fprintf(w, "%-10s %6d %12.2f %12.2f %12.2f %10.1f\n",
					r.Algorithm, r.Runs, r.CostBest, r.CostMean, r.CostStd, r.TimeMeanMs)
			}
			return nil
		})
	},
}

func init() {
	f := benchCmd.Flags()
	f.IntVarP(&benchRuns, "runs", "n", 0, "runs per algorithm overriding bench.runs")
	f.StringVarP(&solveFlags.instance, "instance", "i", "", "instance file overriding instance.path")
	f.StringSliceVarP(&solveFlags.algorithms, "algorithm", "a", nil, "algorithms to benchmark")
	f.Int64Var(&solveFlags.seed, "seed", 0, "base seed overriding bench.base_seed")
	f.StringVarP(&solveFlags.out, "out", "o", "", "output directory overriding output.dir")
	rootCmd.AddCommand(benchCmd)
}
