package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/satwatch/lnbits-tracker/internal/config"
)

// Channel posts and anonymous admin messages carry no sender; the
// command handler must drop them instead of dereferencing From.
func TestCommandHandlerIgnoresSenderlessMessages(t *testing.T) {
	d, wallet, _ := newTestDispatcher(t)
	b := &Bot{
		cfg:  &config.Config{},
		disp: d,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	b.commandHandler(context.Background(), nil, &models.Update{
		Message: &models.Message{Text: "/balance"},
	})

	wallet.mu.Lock()
	defer wallet.mu.Unlock()
	if wallet.balanceCalls != 0 {
		t.Fatal("senderless message must not be dispatched")
	}
}
