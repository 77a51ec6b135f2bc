package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"texpand/internal/config"
)

func newCheckCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print the active rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, rs, err := loadRules(cmd, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if settings.ConfigPath != "" {
				fmt.Fprintf(out, "Config file: %s\n", settings.ConfigPath)
			}
			fmt.Fprintf(out, "Match mode: %s, ignore case: %t\n", settings.Mode, settings.IgnoreCase)
			fmt.Fprintf(out, "Active rules (%d):\n", rs.Len())

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, r := range rs.Rules() {
				fmt.Fprintf(w, "  %q\t->\t%q\t(%s)\n", r.Trigger, r.Replacement, r.Source)
			}
			return w.Flush()
		},
	}
}
