package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"texpand/internal/api"
	"texpand/internal/config"
	"texpand/internal/engine"
	"texpand/internal/keyboard"
	"texpand/internal/logging"
	"texpand/internal/metrics"
	"texpand/internal/server"
	"texpand/pkg/matcher"
)

func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "texpand",
		Short: "Global text replacement",
		Long: `texpand listens to the keyboard and replaces configured trigger words
with their replacements once you finish typing them (space, enter, tab or
punctuation).

Rules come from a config file with a "replacements" mapping and from
repeated --map flags. Inline --map rules override file rules with the
same trigger.`,
		Example: `  texpand --map omw="On my way!" --map ty="Thank you"
  texpand --config ~/.config/texpand/config.json --ignore-case`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(cfg.Verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&cfg.Verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newCheckCmd(cfg))
	rootCmd.AddCommand(newSimulateCmd(cfg))

	return rootCmd
}

// loadRules resolves configuration into a rule set. Every configuration
// error surfaces here, before any keyboard device is opened.
func loadRules(cmd *cobra.Command, cfg *config.Config) (*config.Settings, *matcher.RuleSet, error) {
	settings, err := config.Load(cfg, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("configuration: %w", err)
	}
	rs, err := settings.RuleSet()
	if err != nil {
		return nil, nil, fmt.Errorf("configuration: %w", err)
	}
	metrics.RulesLoaded.Set(float64(rs.Len()))
	return settings, rs, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	settings, rs, err := loadRules(cmd, cfg)
	if err != nil {
		return err
	}

	log.Info().
		Int("rules", rs.Len()).
		Bool("ignoreCase", settings.IgnoreCase).
		Str("match", settings.Mode.String()).
		Msg("Active rules loaded")
	for _, r := range rs.Rules() {
		log.Debug().Str("trigger", r.Trigger).Str("replacement", r.Replacement).Str("source", r.Source.String()).Msg("Rule")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.MetricsAddr != "" {
		rulesHandler, err := api.NewRulesHandler(rs)
		if err != nil {
			return err
		}
		mux := metrics.NewMux(map[string]http.Handler{"/api/rules": rulesHandler})
		go func() {
			if err := metrics.StartMetricsServer(ctx, settings.MetricsAddr, mux); err != nil {
				metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeServer).Inc()
				log.Err(err).Msg("Metrics server error")
			}
		}()
	}

	// Open the physical keyboards before the virtual one exists, so the
	// executor's own keys are never read back.
	src, err := keyboard.NewSource()
	if err != nil {
		return fmt.Errorf("start key source: %w", err)
	}
	defer src.Close()

	events, err := src.Start(ctx)
	if err != nil {
		return fmt.Errorf("start key source: %w", err)
	}

	var exec keyboard.Executor
	if settings.DryRun {
		exec = keyboard.NewLogExecutor()
	} else if exec, err = keyboard.NewExecutor(); err != nil {
		return fmt.Errorf("start key executor: %w", err)
	}
	defer exec.Close()

	listener := server.NewListener(engine.New(rs, nil), exec, settings.Settle)
	if err := listener.Run(ctx, events); err != nil {
		// Every keyboard went away; only an interrupt is a clean exit.
		return fmt.Errorf("listen: %w", err)
	}

	log.Info().Msg("Stopped")
	return nil
}
