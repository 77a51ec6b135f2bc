package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"texpand/internal/config"
	"texpand/internal/engine"
	"texpand/internal/keyboard"
	"texpand/internal/server"
)

func newSimulateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate TEXT...",
		Short: "Type TEXT through the engine without touching the keyboard",
		Long: `simulate feeds TEXT through the trigger engine as if it had been typed
and prints each replacement and the resulting text. Use \b for backspace,
\n for enter, \t for tab and \\ for a literal backslash. Multiple arguments
are joined with spaces.`,
		Example: `  texpand simulate --map omw="On my way!" 'om\bmw '`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rs, err := loadRules(cmd, cfg)
			if err != nil {
				return err
			}

			transcript := keyboard.NewTranscript()
			// Typing is synchronous here, so there is no echo to settle.
			listener := server.NewListener(engine.New(rs, nil), transcript, 0)

			for _, ev := range keyboard.ParseText(strings.Join(args, " ")) {
				transcript.Type(ev)
				listener.Step(cmd.Context(), ev)
			}

			out := cmd.OutOrStdout()
			for _, a := range transcript.Actions() {
				fmt.Fprintf(out, "replace %q: delete %d, insert %q, retype %q\n", a.Rule.Trigger, a.Delete, a.Insert, a.Retype)
			}
			fmt.Fprintf(out, "%q\n", transcript.String())
			return nil
		},
	}
}
