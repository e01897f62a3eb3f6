package lnbits

// Wallet is the response of the wallet endpoint
type Wallet struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"` // in msat
}

// Payment represents one ledger entry as returned by LNbits
type Payment struct {
	PaymentHash string        `json:"payment_hash"`
	Amount      int64         `json:"amount"` // in msat, positive = incoming
	Memo        string        `json:"memo"`
	Time        int64         `json:"time"`
	Pending     bool          `json:"pending"`
	Extra       *PaymentExtra `json:"extra,omitempty"`
}

// PaymentExtra carries LNURLp metadata attached to a payment
type PaymentExtra struct {
	Tag     string `json:"tag,omitempty"`
	Link    string `json:"link,omitempty"` // pay link id the payment came through
	Comment string `json:"comment,omitempty"`
	Extra   int64  `json:"extra,omitempty"` // donation amount in msat
}

// PayLink is an LNURLp extension pay link
type PayLink struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Username    string `json:"username"`
	LNURL       string `json:"lnurl"`
}

// MsatToSats converts millisatoshis to whole satoshis, truncating
// toward zero. The sign is preserved.
func MsatToSats(msat int64) int64 {
	return msat / 1000
}
