package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/example/vocab-tracker/services/tracker/internal/practice"
)

func newPracticeCmd() *cobra.Command {
	var (
		category string
		logFile  string
	)
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Drill flashcards in the terminal",
		Long:  "practice shows the vocabulary deck weakest-first. Answer with 1 (know),\n2 (unsure) or 3 (don't know); missed cards come back a few cards later.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errors.New("practice needs an interactive terminal")
			}
			if dir := filepath.Dir(logFile); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			a, err := openApp(cmd.Context(), logFile)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			cards := a.catalog.Deck().Filter(category)
			if len(cards) == 0 {
				return errors.New("no cards: set TRACKER_CATALOG_PATH to a vocabulary file")
			}
			m := practice.New(cmd.Context(), a.eng, a.eng.Mastery(), cards)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&category, "category", "All", "deck category to practice")
	cmd.Flags().StringVar(&logFile, "log-file", filepath.Join("data", "tracker.log"), "where to write logs while the UI owns the terminal")
	return cmd
}
