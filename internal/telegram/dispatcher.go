package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/satwatch/lnbits-tracker/internal/config"
	"github.com/satwatch/lnbits-tracker/internal/lnbits"
	"github.com/satwatch/lnbits-tracker/internal/notifier"
	"github.com/satwatch/lnbits-tracker/internal/storage"
)

const (
	replyUnknown = "Unknown command. Available commands: /balance, /transactions, /info, /help"

	replyFetchError = "Error talking to the wallet provider. Try again later."
)

// WalletClient is the read-only provider surface the dispatcher needs
type WalletClient interface {
	GetWalletBalance(ctx context.Context) (int64, error)
	ListPayments(ctx context.Context, limit int) ([]lnbits.Payment, error)
}

// Dispatcher maps inbound commands to reply texts. Replies use
// Telegram HTML markup; provider-supplied memos are sanitized before
// they reach the chat.
type Dispatcher struct {
	cfg     *config.Config
	wallet  WalletClient
	storage *storage.Storage
	log     *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(cfg *config.Config, wallet WalletClient, store *storage.Storage, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		wallet:  wallet,
		storage: store,
		log:     log,
	}
}

// Handle produces the reply text for one inbound command
func (d *Dispatcher) Handle(ctx context.Context, cmd Command, arg string, userID int64) string {
	switch cmd {
	case CommandBalance:
		return d.balanceReply(ctx)
	case CommandTransactions:
		return d.transactionsReply(ctx)
	case CommandInfo:
		return d.infoReply()
	case CommandHelp:
		return d.helpReply()
	case CommandBan:
		return d.banReply(arg, userID)
	default:
		return replyUnknown
	}
}

func (d *Dispatcher) balanceReply(ctx context.Context) string {
	msat, err := d.wallet.GetWalletBalance(ctx)
	if err != nil {
		d.log.Error("balance command", "error", err)
		return replyFetchError
	}

	return fmt.Sprintf(
		"📊 <b>%s</b> — <b>Wallet Balance</b>\n\n"+
			"Current balance: <code>%s</code>\n\n"+
			"🕒 %s",
		d.cfg.InstanceName,
		notifier.FormatSats(lnbits.MsatToSats(msat)),
		timestamp(),
	)
}

func (d *Dispatcher) transactionsReply(ctx context.Context) string {
	payments, err := d.wallet.ListPayments(ctx, d.cfg.TransactionsCount)
	if err != nil {
		d.log.Error("transactions command", "error", err)
		return replyFetchError
	}

	if len(payments) == 0 {
		return "No transactions found."
	}

	banned, err := d.storage.ListBannedWords()
	if err != nil {
		d.log.Error("list banned words", "error", err)
	}

	var incoming, outgoing, pending []string
	for _, p := range payments {
		sats := lnbits.MsatToSats(p.Amount)
		if sats < 0 {
			sats = -sats
		}
		line := fmt.Sprintf("<code>%s</code> — %s",
			notifier.FormatSats(sats),
			notifier.SanitizeMemo(p.Memo, banned),
		)

		switch {
		case p.Pending:
			pending = append(pending, line)
		case p.Amount > 0:
			incoming = append(incoming, line)
		case p.Amount < 0:
			outgoing = append(outgoing, line)
		}
	}

	lines := []string{fmt.Sprintf("⚡ <b>%s</b> — <b>Latest Transactions</b>", d.cfg.InstanceName), ""}
	lines = appendSection(lines, "🟢 <b>Incoming:</b>", incoming)
	lines = appendSection(lines, "🔴 <b>Outgoing:</b>", outgoing)
	lines = appendSection(lines, "⏳ <b>In progress:</b>", pending)
	lines = append(lines, "🕒 "+timestamp())

	return strings.Join(lines, "\n")
}

func (d *Dispatcher) infoReply() string {
	lines := []string{
		fmt.Sprintf("ℹ️ <b>%s</b> — <b>Information</b>", d.cfg.InstanceName),
		"",
		fmt.Sprintf("Balance change threshold: <code>%s</code>", notifier.FormatSats(d.cfg.BalanceThresholdSats)),
		fmt.Sprintf("Balance check interval: <code>%s</code>", intervalText(d.cfg.BalanceCheckInterval)),
		fmt.Sprintf("Daily summary interval: <code>%s</code>", intervalText(d.cfg.DailySummaryInterval)),
		fmt.Sprintf("Payments fetch interval: <code>%s</code>", intervalText(d.cfg.PaymentsFetchInterval)),
	}

	if d.cfg.InformationURL != "" {
		lines = append(lines, "", fmt.Sprintf("More: %s", d.cfg.InformationURL))
	}

	lines = append(lines, "", "🕒 "+timestamp())
	return strings.Join(lines, "\n")
}

func (d *Dispatcher) helpReply() string {
	return strings.Join([]string{
		fmt.Sprintf("🤖 <b>%s</b> — <b>Commands</b>", d.cfg.InstanceName),
		"",
		"/balance — current wallet balance",
		"/transactions — latest transactions",
		"/info — monitor configuration",
		"/help — this message",
	}, "\n")
}

func (d *Dispatcher) banReply(arg string, userID int64) string {
	if !d.cfg.AdminUserIDs[userID] {
		d.log.Warn("ban command from non-admin", "user_id", userID)
		return "This command is restricted to administrators."
	}

	word := strings.TrimSpace(arg)
	if word == "" {
		return "Usage: /ban &lt;word&gt;"
	}

	if err := d.storage.BanWord(word); err != nil {
		d.log.Error("ban word", "error", err)
		return "Failed to update the moderation list."
	}

	d.log.Info("word banned", "user_id", userID)
	return "Word added to the moderation list."
}

func appendSection(lines []string, header string, entries []string) []string {
	if len(entries) == 0 {
		return lines
	}
	lines = append(lines, header)
	lines = append(lines, entries...)
	lines = append(lines, "")
	return lines
}

func intervalText(d time.Duration) string {
	if d <= 0 {
		return "disabled"
	}
	return d.String()
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC"
}
