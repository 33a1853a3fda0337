package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/example/vocab-tracker/services/tracker/internal/catalog"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show mastery counts and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "history: %d  pending: %d  tracked items: %d\n",
				a.eng.History().Len(), a.eng.Pending().Len(), a.eng.Mastery().Len())

			deck := a.catalog.Deck()
			if deck.Len() == 0 {
				return printWeak(cmd, a.eng.Mastery().WeakItems())
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("CATEGORY", "KNOW", "UNSURE", "DONT_KNOW", "UNRATED")
			for _, c := range append([]string{catalog.All}, deck.Categories()...) {
				s := progress.Tally(a.eng.Mastery(), deck.Filter(c))
				t.Row(c, strconv.Itoa(s.Know), strconv.Itoa(s.Unsure), strconv.Itoa(s.DontKnow), strconv.Itoa(s.Unrated))
			}
			_, err = fmt.Fprintln(out, t.Render())
			return err
		},
	}
}

func printWeak(cmd *cobra.Command, weak map[string]struct{}) error {
	keys := make([]string, 0, len(weak))
	for k := range weak {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(cmd.OutOrStdout(), "weak items: %d\n", len(keys))
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", k)
	}
	return nil
}
