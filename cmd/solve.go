package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/berthalloc/app"
	"github.com/kilianp07/berthalloc/config"
)

var solveFlags struct {
	instance   string
	algorithms []string
	seed       int64
	out        string
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Allocate an instance and improve it with the configured searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Name(), applySolveFlags(cmd), func(ctx context.Context, svc *app.Service) error {
			out, err := svc.Solve(ctx)
			if out != nil {
				if best, ok := out.Best(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "best %s: cost %.2f\n", best.Algorithm, best.BestCost)
				}
			}
			return err
		})
	},
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveFlags.instance, "instance", "i", "", "instance file overriding instance.path")
	f.StringSliceVarP(&solveFlags.algorithms, "algorithm", "a", nil, "algorithms to run: local, tabu, annealing, pareto")
	f.Int64Var(&solveFlags.seed, "seed", 0, "random seed overriding search.seed")
	f.StringVarP(&solveFlags.out, "out", "o", "", "output directory overriding output.dir")
	rootCmd.AddCommand(solveCmd)
}

func applySolveFlags(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		if solveFlags.instance != "" {
			cfg.Instance.Path = solveFlags.instance
		}
		if len(solveFlags.algorithms) > 0 {
			cfg.Search.Algorithms = solveFlags.algorithms
			cfg.Bench.Algorithms = solveFlags.algorithms
		}
		if cmd.Flags().Changed("seed") {
			cfg.Search.Seed = solveFlags.seed
			cfg.Bench.BaseSeed = solveFlags.seed
		}
		if solveFlags.out != "" {
			cfg.Output.Dir = solveFlags.out
		}
	}
}
