// Package export writes the full response history for the learner to keep,
// and reads a JSON export back for import.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

const SheetName = "History"

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("export: unknown format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// Filename is the suggested download name for an export taken at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("korean-practice-%s.%s", t.UTC().Format("2006-01-02"), f)
}

// Write dispatches on format.
func Write(w io.Writer, f Format, events []progress.Event) error {
	if f == FormatXLSX {
		return WriteXLSX(w, events)
	}
	return WriteJSON(w, events)
}

// WriteJSON writes events as an indented JSON array. An empty history is
// written as [] rather than null.
func WriteJSON(w io.Writer, events []progress.Event) error {
	if events == nil {
		events = []progress.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(events)
}

// ReadJSON decodes a JSON export.
func ReadJSON(r io.Reader) ([]progress.Event, error) {
	var events []progress.Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("export: decode history: %w", err)
	}
	for i, ev := range events {
		if strings.TrimSpace(ev.ItemKey) == "" || !ev.Outcome.Valid() {
			return nil, fmt.Errorf("export: event %d: %w", i, progress.ErrInvalidResponse)
		}
	}
	return events, nil
}

var xlsxHeader = []interface{}{"Timestamp", "Student", "Item", "Gloss", "Outcome", "Category", "Source", "Session"}

// WriteXLSX writes one header row and one row per event on the History sheet.
func WriteXLSX(w io.Writer, events []progress.Event) error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", SheetName)

	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	for i, ev := range events {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
			ev.StudentID,
			ev.ItemKey,
			ev.ItemGloss,
			string(ev.Outcome),
			ev.Category,
			ev.Source,
			ev.SessionID,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}
