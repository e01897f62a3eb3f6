package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("not found")

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// New creates a new Storage instance and initializes the database
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS donations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			payment_hash TEXT NOT NULL UNIQUE,
			memo TEXT NOT NULL,
			amount_sats INTEGER NOT NULL,
			likes INTEGER NOT NULL DEFAULT 0,
			dislikes INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_donations_created_at ON donations(created_at)`,

		`CREATE TABLE IF NOT EXISTS banned_words (
			word TEXT PRIMARY KEY,
			banned_at INTEGER NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// --- Donations ---

// AddDonation records a donation, returns true if it was new. The
// payment hash keeps the insert idempotent under re-fetch.
func (s *Storage) AddDonation(paymentHash, memo string, amountSats int64) (bool, error) {
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO donations (payment_hash, memo, amount_sats, created_at)
		 VALUES (?, ?, ?, ?)`,
		paymentHash, memo, amountSats, time.Now().Unix(),
	)
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ListDonations returns all donations, newest first
func (s *Storage) ListDonations() ([]Donation, error) {
	rows, err := s.db.Query(
		`SELECT id, payment_hash, memo, amount_sats, likes, dislikes, created_at
		 FROM donations ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []Donation
	for rows.Next() {
		var d Donation
		var createdAt int64

		err := rows.Scan(&d.ID, &d.PaymentHash, &d.Memo, &d.AmountSats, &d.Likes, &d.Dislikes, &createdAt)
		if err != nil {
			return nil, err
		}

		d.CreatedAt = time.Unix(createdAt, 0)
		donations = append(donations, d)
	}

	return donations, rows.Err()
}

// TotalDonations returns the sum of all donation amounts in sats
func (s *Storage) TotalDonations() (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow("SELECT SUM(amount_sats) FROM donations").Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// LastDonationAt returns the time of the most recent donation, zero
// time when there are none.
func (s *Storage) LastDonationAt() (time.Time, error) {
	var ts sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(created_at) FROM donations").Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0), nil
}

// Vote increments the like or dislike counter of a donation. Votes are
// anonymous, one browser can vote any number of times.
func (s *Storage) Vote(donationID int64, like bool) error {
	column := "dislikes"
	if like {
		column = "likes"
	}

	result, err := s.db.Exec(
		"UPDATE donations SET "+column+" = "+column+" + 1 WHERE id = ?",
		donationID,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Moderation ---

// BanWord adds a word to the moderation list
func (s *Storage) BanWord(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return errors.New("empty word")
	}

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO banned_words (word, banned_at) VALUES (?, ?)",
		word, time.Now().Unix(),
	)
	return err
}

// ListBannedWords returns the moderation list
func (s *Storage) ListBannedWords() ([]string, error) {
	rows, err := s.db.Query("SELECT word FROM banned_words ORDER BY word")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	return words, rows.Err()
}
