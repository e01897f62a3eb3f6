package telegram

import (
	"github.com/go-telegram/bot/models"
	"github.com/satwatch/lnbits-tracker/internal/config"
)

// LinksKeyboard returns the inline keyboard attached under replies and
// notifications: optional dashboard links plus the transactions
// callback button.
func LinksKeyboard(cfg *config.Config) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	if cfg.OverwatchURL != "" {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "🔗 View Details", URL: cfg.OverwatchURL},
		})
	}
	if cfg.DonationsURL != "" {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "💰 View Donations", URL: cfg.DonationsURL},
		})
	}

	rows = append(rows, []models.InlineKeyboardButton{
		{Text: "📈 View Transactions", CallbackData: "view_transactions"},
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
