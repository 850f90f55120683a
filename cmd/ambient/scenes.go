package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/ambient/generator"
	"github.com/lixenwraith/ambient/scene"
)

func newScenesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List scenes and their generators",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			table := scene.DefaultTable()
			table.SetLowComplexity(cfg.LowComplexity)
			for key, gens := range cfg.Scenes {
				if err := table.Register(key, gens...); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCENE\tGENERATORS")
			for _, key := range table.Keys() {
				fmt.Fprintf(w, "%s\t%s\n", key, strings.Join(table.Resolve(key), ", "))
			}
			fmt.Fprintf(w, "(other)\t%s\n", strings.Join(table.Resolve(""), ", "))
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\ngenerators: %s\n", strings.Join(generator.Names(), " "))
			return nil
		},
	}
}
