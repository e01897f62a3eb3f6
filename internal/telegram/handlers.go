package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/satwatch/lnbits-tracker/internal/config"
)

// Bot wraps the telegram bot with handlers
type Bot struct {
	bot  *bot.Bot
	cfg  *config.Config
	disp *Dispatcher
	log  *slog.Logger
}

// New creates a new telegram bot
func New(cfg *config.Config, disp *Dispatcher, log *slog.Logger) (*Bot, error) {
	b := &Bot{
		cfg:  cfg,
		disp: disp,
		log:  log,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithCallbackQueryDataHandler("", bot.MatchTypePrefix, b.callbackHandler),
	}

	tgBot, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.bot = tgBot

	// Register command handlers
	for _, cmd := range []string{"/balance", "/transactions", "/info", "/help", "/ban"} {
		tgBot.RegisterHandler(bot.HandlerTypeMessageText, cmd, bot.MatchTypePrefix, b.commandHandler)
	}

	return b, nil
}

// Start starts the bot long-polling
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

// StartWebhook serves updates delivered to the webhook handler instead
// of long-polling.
func (b *Bot) StartWebhook(ctx context.Context) {
	b.bot.StartWebhook(ctx)
}

// WebhookHandler returns the HTTP handler that accepts Telegram update
// payloads, for mounting into the dashboard server.
func (b *Bot) WebhookHandler() http.Handler {
	return b.bot.WebhookHandler()
}

// --- Handlers ---

func (b *Bot) commandHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	// From is nil for channel posts and anonymous admins.
	if update.Message == nil || update.Message.From == nil {
		return
	}

	cmd, arg := ParseCommand(update.Message.Text)
	reply := b.disp.Handle(ctx, cmd, arg, update.Message.From.ID)

	b.log.Info("command handled",
		"command", cmd.String(),
		"user_id", update.Message.From.ID,
	)

	b.sendMessage(ctx, update.Message.Chat.ID, reply, LinksKeyboard(b.cfg))
}

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Only slash input gets the unrecognized-command reply, plain chat
	// text is ignored.
	cmd, _ := ParseCommand(update.Message.Text)
	if cmd != CommandUnknown || update.Message.Text[0] != '/' {
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID, replyUnknown, nil)
}

func (b *Bot) callbackHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery

	// Answer callback to remove loading state
	tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
	})

	switch cb.Data {
	case "view_transactions":
		reply := b.disp.Handle(ctx, CommandTransactions, "", cb.From.ID)
		b.sendMessage(ctx, cb.From.ID, reply, LinksKeyboard(b.cfg))
	default:
		b.log.Warn("unknown callback", "data", cb.Data, "user_id", cb.From.ID)
	}
}

// --- Helpers ---

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.SendMessage(ctx, params)
	if err != nil {
		b.log.Error("send message", "error", err)
	}
}

// SendMessage delivers a notification to the configured chat. It
// implements the notifier Sender interface.
func (b *Bot) SendMessage(ctx context.Context, text string) error {
	disablePreview := true
	params := &bot.SendMessageParams{
		ChatID:    b.cfg.ChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
	}
	if kb := LinksKeyboard(b.cfg); kb != nil {
		params.ReplyMarkup = kb
	}

	_, err := b.bot.SendMessage(ctx, params)
	return err
}
