// Command hamlet runs the town life simulation.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/hamlet/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:           "hamlet",
		Short:         "Simulate the lives of a small town's residents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(eventsCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(inspectCmd())
	if err := root.Execute(); err != nil {
		slog.Error("hamlet failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return nil
}
