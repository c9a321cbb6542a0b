package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	STORE_DRIVER=postgres
//	POSTGRES_HOST=localhost
//	PLATFORM_FEE_PERCENT=0.75
//	ADMIN_USER_IDS=ops-1,ops-2
//	DOCUMENT_PROVIDERS=docusign,dropbox
//	KAFKA_BROKERS=localhost:9092
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Platform  PlatformConfig
	Lifecycle LifecycleConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string   // The TCP port the HTTP server will listen on (e.g., "8080")
	AdminUserIDs   []string // Callers treated as platform admins
	RateLimitRPS   float64
	RateLimitBurst int
}

// StoreConfig selects the trade store backend.
//
// Fields:
//   - Driver: "memory", "file" or "postgres".
//   - FilePath: JSON snapshot location for the "file" driver.
type StoreConfig struct {
	Driver   string
	FilePath string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// PlatformConfig seeds the platform settings on first start. Once an admin
// changes them, the stored values win.
type PlatformConfig struct {
	FeePercent              decimal.Decimal
	InsuranceEnabled        bool
	InsurancePremiumPercent decimal.Decimal
	EscrowWallet            string
	PlatformWallet          string
}

// LifecycleConfig tunes the trade state machine.
type LifecycleConfig struct {
	DocumentProviders []string
	KeyCodeLength     int
}

// NotifyConfig enables the optional notification sinks. Empty values
// disable the matching sink.
type NotifyConfig struct {
	WebsocketEnabled bool
	KafkaBrokers     []string
	KafkaTopic       string
	TelegramToken    string
	TelegramChatID   int64
}

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ADMIN_USER_IDS", "")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)

	viper.SetDefault("STORE_DRIVER", DriverMemory)
	viper.SetDefault("STORE_FILE_PATH", "./data/trades.json")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tradeflow")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("PLATFORM_FEE_PERCENT", "0.75")
	viper.SetDefault("INSURANCE_ENABLED", true)
	viper.SetDefault("INSURANCE_PREMIUM_PERCENT", "1.25")
	viper.SetDefault("ESCROW_WALLET_ADDRESS", "")
	viper.SetDefault("PLATFORM_WALLET_ADDRESS", "")

	viper.SetDefault("DOCUMENT_PROVIDERS", "docusign,dropbox,google-drive,upload")
	viper.SetDefault("KEY_CODE_LENGTH", 8)

	viper.SetDefault("WEBSOCKET_ENABLED", true)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "trade-events")
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("TELEGRAM_CHAT_ID", 0)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			AdminUserIDs:   splitList(viper.GetString("ADMIN_USER_IDS")),
			RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(strings.TrimSpace(viper.GetString("STORE_DRIVER"))),
			FilePath: viper.GetString("STORE_FILE_PATH"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Platform: PlatformConfig{
			FeePercent:              parseDecimal(viper.GetString("PLATFORM_FEE_PERCENT")),
			InsuranceEnabled:        viper.GetBool("INSURANCE_ENABLED"),
			InsurancePremiumPercent: parseDecimal(viper.GetString("INSURANCE_PREMIUM_PERCENT")),
			EscrowWallet:            viper.GetString("ESCROW_WALLET_ADDRESS"),
			PlatformWallet:          viper.GetString("PLATFORM_WALLET_ADDRESS"),
		},
		Lifecycle: LifecycleConfig{
			DocumentProviders: splitList(viper.GetString("DOCUMENT_PROVIDERS")),
			KeyCodeLength:     viper.GetInt("KEY_CODE_LENGTH"),
		},
		Notify: NotifyConfig{
			WebsocketEnabled: viper.GetBool("WEBSOCKET_ENABLED"),
			KafkaBrokers:     splitList(viper.GetString("KAFKA_BROKERS")),
			KafkaTopic:       viper.GetString("KAFKA_TOPIC"),
			TelegramToken:    viper.GetString("TELEGRAM_BOT_TOKEN"),
			TelegramChatID:   viper.GetInt64("TELEGRAM_CHAT_ID"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// validateConfig terminates the application when Validate reports problems.
func validateConfig() {
	if problems := Validate(AppConfig); len(problems) > 0 {
		log.Fatalf("invalid configuration: %v\n", problems)
	}
}

// Validate returns the names of missing or invalid settings in cfg.
// Postgres settings are only required for the postgres driver.
func Validate(cfg Config) []string {
	var problems []string

	if cfg.Server.Port == "" {
		problems = append(problems, "SERVER_PORT")
	}

	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if cfg.Store.FilePath == "" {
			problems = append(problems, "STORE_FILE_PATH")
		}
	case DriverPostgres:
		if cfg.Postgres.Host == "" {
			problems = append(problems, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			problems = append(problems, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			problems = append(problems, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			problems = append(problems, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			problems = append(problems, "POSTGRES_DB")
		}
	default:
		problems = append(problems, "STORE_DRIVER")
	}

	hundred := decimal.NewFromInt(100)
	if cfg.Platform.FeePercent.IsNegative() || cfg.Platform.FeePercent.GreaterThanOrEqual(hundred) {
		problems = append(problems, "PLATFORM_FEE_PERCENT")
	}
	if cfg.Platform.InsurancePremiumPercent.IsNegative() || cfg.Platform.InsurancePremiumPercent.GreaterThanOrEqual(hundred) {
		problems = append(problems, "INSURANCE_PREMIUM_PERCENT")
	}
	if len(cfg.Lifecycle.DocumentProviders) == 0 {
		problems = append(problems, "DOCUMENT_PROVIDERS")
	}
	if cfg.Lifecycle.KeyCodeLength < 6 || cfg.Lifecycle.KeyCodeLength > 64 {
		problems = append(problems, "KEY_CODE_LENGTH")
	}
	if len(cfg.Notify.KafkaBrokers) > 0 && cfg.Notify.KafkaTopic == "" {
		problems = append(problems, "KAFKA_TOPIC")
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID == 0 {
		problems = append(problems, "TELEGRAM_CHAT_ID")
	}

	return problems
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDecimal returns -1 for unparsable input so Validate flags it.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NewFromInt(-1)
	}
	return d
}
