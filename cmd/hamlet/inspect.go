package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hamlet/internal/persistence"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Summarize an exported snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := persistence.ReadSnapshot(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:           %s (seed %d)\n", snap.RunID, snap.Seed)
			fmt.Fprintf(out, "Date:          %s after %s ticks\n", snap.Date, humanize.Comma(int64(snap.Ticks)))
			fmt.Fprintf(out, "Entities:      %s\n", humanize.Comma(int64(len(snap.Entities))))
			fmt.Fprintf(out, "Relationships: %s\n", humanize.Comma(int64(len(snap.Relationships))))
			fmt.Fprintf(out, "Life events:   %s\n", humanize.Comma(int64(len(snap.Events))))

			kinds := map[string]int{}
			for _, e := range snap.Entities {
				kinds[e.Kind+"/"+e.Status]++
			}
			printCounts(cmd, "By kind", kinds)

			types := map[string]int{}
			for _, ev := range snap.Events {
				types[ev.Type]++
			}
			printCounts(cmd, "By event", types)
			return nil
		},
	}
}

func printCounts(cmd *cobra.Command, title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %s\n", k, humanize.Comma(int64(counts[k])))
	}
}
