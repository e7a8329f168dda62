package message

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hearingbot/internal/records"
	"hearingbot/pkg/logx"
)

func writeTemplate(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := map[string]string{
		"Active":   writeTemplate(t, dir, "active.txt", "Dear {Client}\n"),
		"Inactive": filepath.Join(dir, "missing.txt"),
	}

	s, err := LoadStore(paths, []string{"Active"}, logx.Nop())
	if err != nil {
		t.Fatalf("LoadStore error: %v", err)
	}
	if text, ok := s.Get("Active"); !ok || text != "Dear {Client}" {
		t.Errorf("Get(Active) = %q, %v", text, ok)
	}
	// unselected broken template is dropped, not fatal
	if _, ok := s.Get("Inactive"); ok {
		t.Error("Inactive should not have loaded")
	}
}

func TestLoadStoreSelectedMissingIsFatal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := map[string]string{"Active": filepath.Join(dir, "absent.txt")}
	_, err := LoadStore(paths, []string{"Active"}, logx.Nop())
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("err = %v, want ErrTemplate", err)
	}
}

func TestLoadStoreSelectedEmptyIsFatal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := map[string]string{"Active": writeTemplate(t, dir, "empty.txt", "  \n ")}
	_, err := LoadStore(paths, []string{"Active"}, logx.Nop())
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("err = %v, want ErrTemplate", err)
	}
}

func TestLoadStoreSelectedWithoutMappingIsFatal(t *testing.T) {
	t.Parallel()
	_, err := LoadStore(map[string]string{}, []string{"Active"}, logx.Nop())
	if !errors.Is(err, ErrTemplate) {
		t.Fatalf("err = %v, want ErrTemplate", err)
	}
}

func TestRenderSubstitution(t *testing.T) {
	t.Parallel()
	rec := records.ClientRecord{
		Fields: map[string]string{
			"Client":          "A",
			"NextHearingDate": "2026-09-05",
		},
	}
	got := Render("Dear {Client}, hearing on {NextHearingDate}", rec)
	want := "Dear A, hearing on 2026-09-05"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	t.Parallel()
	rec := records.ClientRecord{Fields: map[string]string{"Client": "A"}}
	got := Render("Dear {Client}, re {Parties} at {Venue}", rec)
	want := "Dear A, re {Parties} at {Venue}"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderIdempotentWithoutFields(t *testing.T) {
	t.Parallel()
	tmpl := "Nothing to see: {Client} {Contact}"
	got := Render(tmpl, records.ClientRecord{Fields: map[string]string{}})
	if got != tmpl {
		t.Errorf("Render = %q, want input unchanged", got)
	}
}
