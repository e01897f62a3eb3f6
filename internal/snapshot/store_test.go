package snapshot_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satwatch/lnbits-tracker/internal/snapshot"
)

func newTestStore(t *testing.T) (*snapshot.Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	balPath := filepath.Join(dir, "current-balance.txt")
	procPath := filepath.Join(dir, "processed-payments.txt")
	return snapshot.New(balPath, procPath), balPath, procPath
}

func TestLoadFirstRun(t *testing.T) {
	s, _, _ := newTestStore(t)

	balance, found, processed, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found=false on first run")
	}
	if balance != 0 {
		t.Fatalf("expected zero balance, got %d", balance)
	}
	if len(processed) != 0 {
		t.Fatalf("expected empty processed set, got %d entries", len(processed))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)

	ids := map[string]struct{}{
		"hash-a": {},
		"hash-b": {},
		"hash-c": {},
	}

	if err := s.Save(123456, ids); err != nil {
		t.Fatalf("save: %v", err)
	}

	balance, found, processed, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("expected found=true after save")
	}
	if balance != 123456 {
		t.Fatalf("expected balance 123456, got %d", balance)
	}
	if len(processed) != 3 {
		t.Fatalf("expected 3 processed ids, got %d", len(processed))
	}
	for id := range ids {
		if _, ok := processed[id]; !ok {
			t.Fatalf("missing id %q after round-trip", id)
		}
	}
}

func TestSaveNegativeBalance(t *testing.T) {
	s, _, _ := newTestStore(t)

	if err := s.Save(-42, nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	balance, _, _, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != -42 {
		t.Fatalf("expected -42, got %d", balance)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s, _, _ := newTestStore(t)

	if err := s.Save(100, map[string]struct{}{"a": {}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(200, map[string]struct{}{"a": {}, "b": {}}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	balance, _, processed, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if balance != 200 {
		t.Fatalf("expected 200, got %d", balance)
	}
	if len(processed) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(processed))
	}
}

func TestEmptyBalanceFile(t *testing.T) {
	s, balPath, _ := newTestStore(t)

	if err := os.WriteFile(balPath, []byte("\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	balance, found, _, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("expected found=true for present but empty file")
	}
	if balance != 0 {
		t.Fatalf("expected 0 for empty file, got %d", balance)
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s, balPath, _ := newTestStore(t)

	if err := s.Save(1, map[string]struct{}{"x": {}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(balPath))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}
