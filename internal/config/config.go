package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	BotToken           string
	ChatID             int64
	TelegramWebhookURL string

	// LNbits
	LNbitsURL    string
	LNbitsAPIKey string
	InstanceName string
	PayLinkID    string

	// Notifications
	BalanceThresholdSats int64
	TransactionsCount    int

	// Tick intervals (0 = disabled)
	BalanceCheckInterval  time.Duration
	DailySummaryInterval  time.Duration
	PaymentsFetchInterval time.Duration

	// Persistence
	BalanceFile           string
	ProcessedPaymentsFile string
	DBPath                string

	// Dashboard
	AppHost string
	AppPort int

	// Optional links shown under notifications
	OverwatchURL   string
	DonationsURL   string
	InformationURL string

	// Moderation
	AdminUserIDs map[int64]bool
}

func Load() *Config {
	cfg := &Config{
		// Telegram
		BotToken:           getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChatID:             getEnvInt64("CHAT_ID", 0),
		TelegramWebhookURL: getEnv("TELEGRAM_WEBHOOK_URL", ""),

		// LNbits
		LNbitsURL:    strings.TrimSuffix(getEnv("LNBITS_URL", ""), "/"),
		LNbitsAPIKey: getEnv("LNBITS_READONLY_API_KEY", ""),
		InstanceName: getEnv("INSTANCE_NAME", "LNbits Instance"),
		PayLinkID:    getEnv("LNURLP_ID", ""),

		// Notifications
		BalanceThresholdSats: getEnvInt64("BALANCE_CHANGE_THRESHOLD", 10),
		TransactionsCount:    getEnvInt("LATEST_TRANSACTIONS_COUNT", 21),

		// Intervals
		BalanceCheckInterval:  getEnvSeconds("WALLET_INFO_UPDATE_INTERVAL", 86400),
		DailySummaryInterval:  getEnvSeconds("WALLET_BALANCE_NOTIFICATION_INTERVAL", 86400),
		PaymentsFetchInterval: getEnvSeconds("PAYMENTS_FETCH_INTERVAL", 60),

		// Persistence
		BalanceFile:           getEnv("CURRENT_BALANCE_FILE", "./current-balance.txt"),
		ProcessedPaymentsFile: getEnv("PROCESSED_PAYMENTS_FILE", "./processed-payments.txt"),
		DBPath:                getEnv("DB_PATH", "./tracker.db"),

		// Dashboard
		AppHost: getEnv("APP_HOST", "127.0.0.1"),
		AppPort: getEnvInt("APP_PORT", 5009),

		// Links
		OverwatchURL:   getEnv("OVERWATCH_URL", ""),
		DonationsURL:   getEnv("DONATIONS_URL", ""),
		InformationURL: getEnv("INFORMATION_URL", ""),
	}

	// Parse admin user IDs
	cfg.AdminUserIDs = make(map[int64]bool)
	adminIDs := getEnv("ADMIN_USER_IDS", "")
	for _, idStr := range strings.Split(adminIDs, ",") {
		idStr = strings.TrimSpace(idStr)
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			cfg.AdminUserIDs[id] = true
		}
	}

	return cfg
}

// Domain returns the host part of the LNbits URL, used to build
// lightning addresses (user@domain).
func (c *Config) Domain() string {
	u, err := url.Parse(c.LNbitsURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultVal int) time.Duration {
	return time.Duration(getEnvInt(key, defaultVal)) * time.Second
}
