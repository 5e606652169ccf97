package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/berthalloc/app"
	"github.com/kilianp07/berthalloc/config"
	"github.com/kilianp07/berthalloc/core/instance"
)

var generateFlags struct {
	out     string
	format  string
	seed    int64
	vessels int
	berths  int
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a random instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		override := func(cfg *config.Config) {
			if cmd.Flags().Changed("seed") {
				cfg.Instance.Seed = generateFlags.seed
			}
			if generateFlags.vessels > 0 {
				cfg.Instance.Random.Vessels = generateFlags.vessels
			}
			if generateFlags.berths > 0 {
				cfg.Instance.Random.Berths = generateFlags.berths
			}
		}
		return withService(cmd.Name(), override, func(_ context.Context, svc *app.Service) error {
			d, err := svc.Generate()
			if err != nil {
				return err
			}
			if generateFlags.out == "" {
				format := generateFlags.format
				if format == "" || format == instance.FormatAuto {
					format = instance.FormatText
				}
				return instance.Encode(cmd.OutOrStdout(), d, format)
			}
			if err := instance.Save(generateFlags.out, generateFlags.format, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d vessels on %d berths\n", generateFlags.out, len(d.Vessels), len(d.Berths))
			return nil
		})
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFlags.out, "out", "o", "", "instance file to write; stdout when empty")
	f.StringVarP(&generateFlags.format, "format", "f", "", "text, yaml or json; detected from --out when empty")
	f.Int64Var(&generateFlags.seed, "seed", 0, "random seed overriding instance.seed")
	f.IntVar(&generateFlags.vessels, "vessels", 0, "vessel count overriding instance.random.vessels")
	f.IntVar(&generateFlags.berths, "berths", 0, "berth count overriding instance.random.berths")
	rootCmd.AddCommand(generateCmd)
}
