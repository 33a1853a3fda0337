package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SERVICE_NAME", "tracker-test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("APP_ENV", "")
	t.Setenv("TRACKER_STORE_DSN", "sqlite://"+filepath.Join(dir, "tracker.db"))
	t.Setenv("TRACKER_FLUSH_INTERVAL", "1h")
	t.Setenv("TRACKER_COLLECTOR_URL", "")
	t.Setenv("TRACKER_NATS_URL", "")
	t.Setenv("TRACKER_CATALOG_PATH", "")
	t.Setenv("TRACKER_GRPC_ADDR", "")
	return dir
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(dir, "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

const history = `[
  {"timestamp":"2026-01-05T09:00:00Z","student_id":"minji","item_key":"사과","item_gloss":"apple","outcome":"know","category":"Food","source":"flashcard","session_id":"s0"},
  {"timestamp":"2026-01-05T09:00:05Z","student_id":"minji","item_key":"물","item_gloss":"water","outcome":"dont_know","category":"Drinks","source":"flashcard","session_id":"s0"}
]`

func TestImportExportStats(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "history.json")
	if err := os.WriteFile(in, []byte(history), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, dir, "import", "--in", in)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 2 responses") {
		t.Fatalf("unexpected import output %q", out)
	}

	if _, err := execute(t, dir, "import", "--in", in); err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected second import to be refused, got %v", err)
	}

	out, err = execute(t, dir, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "history: 2") || !strings.Contains(out, "pending: 0") {
		t.Fatalf("unexpected stats output %q", out)
	}

	exported := filepath.Join(dir, "out.json")
	if _, err := execute(t, dir, "export", "--out", exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	body, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(body), `"item_key": "물"`) {
		t.Fatalf("unexpected export %s", body)
	}

	xlsx := filepath.Join(dir, "out.xlsx")
	if _, err := execute(t, dir, "export", "--format", "xlsx", "--out", xlsx); err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	if fi, err := os.Stat(xlsx); err != nil || fi.Size() == 0 {
		t.Fatalf("expected xlsx file, err=%v", err)
	}
}

func TestFlush_EmptyQueue(t *testing.T) {
	dir := setupEnv(t)
	out, err := execute(t, dir, "flush")
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !strings.Contains(out, "flush: empty") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	dir := setupEnv(t)
	if _, err := execute(t, dir, "export", "--format", "csv"); err == nil {
		t.Fatal("expected error for csv")
	}
}

func TestStats_WithCatalog(t *testing.T) {
	dir := setupEnv(t)
	vocab := filepath.Join(dir, "vocab.yaml")
	src := "flashcards:\n  categories:\n    - name: Fruit\n      cards:\n        - {kr: 사과, en: apple}\n        - {kr: 배, en: pear}\n"
	if err := os.WriteFile(vocab, []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TRACKER_CATALOG_PATH", vocab)

	out, err := execute(t, dir, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Fruit") || !strings.Contains(out, "UNRATED") {
		t.Fatalf("expected category table, got %q", out)
	}
}
