package storage

import "time"

// Donation is one payment that came in through the configured pay link
type Donation struct {
	ID          int64
	PaymentHash string
	Memo        string
	AmountSats  int64
	Likes       int64
	Dislikes    int64
	CreatedAt   time.Time
}
