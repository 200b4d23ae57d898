package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hamlet/internal/config"
	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/persistence"
	"github.com/talgya/hamlet/internal/simtime"
)

type runOptions struct {
	configPath string
	seed       int64
	years      int
	dbPath     string
	exportPath string
	logLevel   string
}

func runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().IntVar(&opts.years, "years", 0, "Years to simulate (overrides config)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database to save the run into")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "Write a compressed JSON snapshot here")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	return cmd
}

func loadConfig(cmd *cobra.Command, opts runOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = opts.seed
	}
	if cmd.Flags().Changed("years") {
		cfg.Years = opts.years
	}
	if opts.dbPath != "" {
		cfg.Database = opts.dbPath
	}
	if opts.exportPath != "" {
		cfg.Export = opts.exportPath
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, opts runOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	sim, err := engine.NewSimulation(cfg)
	if err != nil {
		return err
	}

	var db *persistence.DB
	if cfg.Database != "" {
		db, err = persistence.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.Database)

		sim.Listen(db.Listener())
		perYear := uint64(simtime.DaysPerYear / cfg.DaysPerTick)
		if perYear == 0 {
			perYear = 1
		}
		sim.Engine.OnTick = func(tick uint64) {
			if tick%perYear != 0 {
				return
			}
			if err := db.Flush(); err != nil {
				slog.Error("event flush failed", "error", err)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		slog.Info("received signal, shutting down", "signal", sig)
		sim.Engine.Stop()
	}()

	runErr := sim.Run(context.Background())

	if db != nil {
		slog.Info("final save...")
		if err := db.SaveWorldState(sim); err != nil {
			return fmt.Errorf("final save: %w", err)
		}
	}
	if cfg.Export != "" {
		if err := persistence.Export(sim, cfg.Export); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		slog.Info("snapshot exported", "path", cfg.Export)
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s after %s ticks (seed %d)\n",
		cfg.Settlement.Name, sim.Clock.Now, humanize.Comma(int64(sim.Engine.Tick)), cfg.Seed)
	fmt.Fprintf(out, "  residents:   %s\n", humanize.Comma(int64(sim.Stats.Population)))
	fmt.Fprintf(out, "  businesses:  %s\n", humanize.Comma(int64(sim.Stats.Businesses)))
	fmt.Fprintf(out, "  births:      %s\n", humanize.Comma(int64(sim.Stats.Births)))
	fmt.Fprintf(out, "  deaths:      %s\n", humanize.Comma(int64(sim.Stats.Deaths)))
	fmt.Fprintf(out, "  departures:  %s\n", humanize.Comma(int64(sim.Stats.Departures)))
	fmt.Fprintf(out, "  life events: %s\n", humanize.Comma(int64(sim.Stats.Events)))
	return nil
}
