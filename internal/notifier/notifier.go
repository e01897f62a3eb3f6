package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/satwatch/lnbits-tracker/internal/config"
	"github.com/satwatch/lnbits-tracker/internal/lnbits"
	"github.com/satwatch/lnbits-tracker/internal/storage"
)

// Sender delivers a formatted message to the configured chat
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// Notifier formats wallet events and sends them to the chat.
// Delivery is best-effort: a failed send is logged and swallowed, the
// caller never blocks or retries mid-tick.
type Notifier struct {
	cfg     *config.Config
	storage *storage.Storage
	sender  Sender
	log     *slog.Logger
}

// New creates a new Notifier
func New(cfg *config.Config, store *storage.Storage, sender Sender, log *slog.Logger) *Notifier {
	return &Notifier{
		cfg:     cfg,
		storage: store,
		sender:  sender,
		log:     log,
	}
}

// BalanceChanged announces a balance delta that crossed the threshold
func (n *Notifier) BalanceChanged(ctx context.Context, previous, delta, current int64) {
	sign := "+"
	if delta < 0 {
		sign = "-"
		delta = -delta
	}

	text := fmt.Sprintf(
		"⚡ <b>%s</b> — <b>Balance Update</b>\n\n"+
			"Previous: <code>%s</code>\n"+
			"Change: <code>%s%s</code>\n"+
			"New balance: <code>%s</code>\n\n"+
			"🕒 %s",
		n.instance(), FormatSats(previous), sign, FormatSats(delta), FormatSats(current),
		timestamp(),
	)

	n.send(ctx, "balance change", text)
}

// NewPayment announces one incoming or outgoing payment
func (n *Notifier) NewPayment(ctx context.Context, p lnbits.Payment) {
	emoji, direction := "🟢", "Incoming Payment"
	if p.Amount < 0 {
		emoji, direction = "🔴", "Outgoing Payment"
	}

	sats := lnbits.MsatToSats(p.Amount)
	if sats < 0 {
		sats = -sats
	}

	text := fmt.Sprintf(
		"%s <b>%s</b> — <b>%s</b>\n\n"+
			"Amount: <code>%s</code>\n"+
			"Memo: %s\n\n"+
			"🕒 %s",
		emoji, n.instance(), direction,
		FormatSats(sats), n.memo(p.Memo),
		timestamp(),
	)

	n.send(ctx, "payment", text)
}

// DailySummary announces the periodic wallet report
func (n *Notifier) DailySummary(ctx context.Context, balance, incomingTotal, outgoingTotal int64, incomingCount, outgoingCount int) {
	text := fmt.Sprintf(
		"📊 <b>%s</b> — <b>Daily Wallet Balance</b>\n\n"+
			"Current balance: <code>%s</code>\n"+
			"Total incoming: <code>%s</code> across <code>%d</code> transactions\n"+
			"Total outgoing: <code>%s</code> across <code>%d</code> transactions\n\n"+
			"🕒 %s",
		n.instance(),
		FormatSats(balance),
		FormatSats(incomingTotal), incomingCount,
		FormatSats(outgoingTotal), outgoingCount,
		timestamp(),
	)

	n.send(ctx, "daily summary", text)
}

// AuthAlert tells the operator the provider rejected the API key.
// Callers rate-limit this so a persistent auth failure does not spam
// the chat every tick.
func (n *Notifier) AuthAlert(ctx context.Context) {
	text := fmt.Sprintf(
		"🚨 <b>%s</b> — <b>Authentication Failure</b>\n\n"+
			"The wallet provider rejected the configured API key. "+
			"Checks continue but will keep failing until the credential is fixed.",
		n.instance(),
	)

	n.send(ctx, "auth alert", text)
}

func (n *Notifier) send(ctx context.Context, kind, text string) {
	if err := n.sender.SendMessage(ctx, text); err != nil {
		n.log.Error("send notification", "kind", kind, "error", err)
	}
}

func (n *Notifier) memo(memo string) string {
	banned, err := n.storage.ListBannedWords()
	if err != nil {
		n.log.Error("list banned words", "error", err)
	}
	return SanitizeMemo(memo, banned)
}

func (n *Notifier) instance() string {
	return n.cfg.InstanceName
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC"
}
