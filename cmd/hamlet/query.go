package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talgya/hamlet/internal/persistence"
)

func eventsCmd() *cobra.Command {
	var dbPath string
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the most recent life events in a saved run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			events, err := db.RecentEvents(limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
				return nil
			}
			for _, ev := range events {
				printEvent(cmd.OutOrStdout(), ev)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "hamlet.db", "SQLite database")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events")
	return cmd
}

func historyCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "history <entity-id>",
		Short: "Show one entity's life story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entity id %q", args[0])
			}

			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if rec, err := db.Entity(id); err == nil {
				fmt.Fprintf(out, "%s (#%d) %s %s\n", rec.Name, rec.ID, rec.Kind, rec.Status)
			}
			events, err := db.History(id)
			if err != nil {
				return err
			}
			for _, ev := range events {
				printEvent(out, ev)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "hamlet.db", "SQLite database")
	return cmd
}

func printEvent(w io.Writer, ev persistence.EventRecord) {
	roles := make([]string, 0, len(ev.Bound))
	for role := range ev.Bound {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	fmt.Fprintf(w, "%-24s %-22s", ev.Date, ev.Type)
	for _, role := range roles {
		fmt.Fprintf(w, " %s=%d", role, ev.Bound[role])
	}
	fmt.Fprintln(w)
}
