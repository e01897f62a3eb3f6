package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/satwatch/lnbits-tracker/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddDonationIdempotent(t *testing.T) {
	s := newTestStorage(t)

	isNew, err := s.AddDonation("hash-1", "first", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isNew {
		t.Fatal("expected isNew=true on first insert")
	}

	isNew, err = s.AddDonation("hash-1", "first", 100)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if isNew {
		t.Fatal("expected isNew=false on duplicate payment hash")
	}

	donations, err := s.ListDonations()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(donations) != 1 {
		t.Fatalf("expected one donation, got %d", len(donations))
	}
}

func TestTotalDonations(t *testing.T) {
	s := newTestStorage(t)

	total, err := s.TotalDonations()
	if err != nil {
		t.Fatalf("total on empty db: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0, got %d", total)
	}

	s.AddDonation("h1", "a", 100)
	s.AddDonation("h2", "b", 250)

	total, err = s.TotalDonations()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 350 {
		t.Fatalf("expected 350, got %d", total)
	}
}

func TestVote(t *testing.T) {
	s := newTestStorage(t)

	s.AddDonation("h1", "a", 100)
	donations, _ := s.ListDonations()
	id := donations[0].ID

	if err := s.Vote(id, true); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := s.Vote(id, true); err != nil {
		t.Fatalf("second like: %v", err)
	}
	if err := s.Vote(id, false); err != nil {
		t.Fatalf("dislike: %v", err)
	}

	donations, _ = s.ListDonations()
	if donations[0].Likes != 2 || donations[0].Dislikes != 1 {
		t.Fatalf("expected likes=2 dislikes=1, got likes=%d dislikes=%d",
			donations[0].Likes, donations[0].Dislikes)
	}
}

func TestVoteUnknownDonation(t *testing.T) {
	s := newTestStorage(t)

	err := s.Vote(999, true)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLastDonationAt(t *testing.T) {
	s := newTestStorage(t)

	ts, err := s.LastDonationAt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ts.IsZero() {
		t.Fatal("expected zero time with no donations")
	}

	s.AddDonation("h1", "a", 100)

	ts, err = s.LastDonationAt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.IsZero() {
		t.Fatal("expected non-zero time after donation")
	}
}

func TestBanWord(t *testing.T) {
	s := newTestStorage(t)

	if err := s.BanWord("  ScamCoin  "); err != nil {
		t.Fatalf("ban: %v", err)
	}
	// Duplicate ban is a no-op
	if err := s.BanWord("scamcoin"); err != nil {
		t.Fatalf("duplicate ban: %v", err)
	}
	if err := s.BanWord("  "); err == nil {
		t.Fatal("expected error for empty word")
	}

	words, err := s.ListBannedWords()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(words) != 1 || words[0] != "scamcoin" {
		t.Fatalf("expected normalized [scamcoin], got %v", words)
	}
}
