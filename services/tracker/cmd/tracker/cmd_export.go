package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/vocab-tracker/services/tracker/internal/export"
)

func newExportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full response history to a file",
		Long:  "export writes every recorded response as JSON or XLSX.\nWith no --out the file is named korean-practice-<date>.<format>; '-' writes to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			events := a.eng.History().Events()
			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				if out == "" {
					out = f.Filename(time.Now())
				}
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, events); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d responses to %s\n", len(events), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output path, '-' for stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a JSON export into an empty history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(in)
			if err != nil {
				return err
			}
			defer file.Close()
			events, err := export.ReadJSON(file)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if err := a.eng.Import(cmd.Context(), events); err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d responses\n", len(events))
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "JSON export to read")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
