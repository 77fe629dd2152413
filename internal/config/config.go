package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendSQL  = "sql"
	BackendREST = "rest"
)

type Config struct {
	DBDriver    string
	DBPath      string
	DatabaseURL string
	OutputDir   string
	InboxDir    string

	CatalogBackend      string
	CatalogTable        string
	CatalogAPIBaseURL   string
	CatalogAPIKey       string
	CatalogRateLimitRPS int
	CatalogTimeoutMs    int

	DefaultOperatorID int64

	// Discovered items priced outside [PriceMin, PriceMax] are not ingested.
	PriceMin *float64
	PriceMax *float64

	ListenerIntervalSec int
	ListenerAutoExport  bool

	MailProvider  string
	MailLabel     string
	MailFetchMax  int
	MailSuppliers map[string]int64

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailRedirectURI  string

	LogLevel       string
	LogDevelopment bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		OutputDir:   getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		InboxDir:    getEnv("INBOX_DIR", filepath.Join(cwd, "data", "inbox")),

		CatalogBackend:      strings.ToLower(getEnv("CATALOG_BACKEND", BackendSQL)),
		CatalogTable:        getEnv("CATALOG_TABLE", "products"),
		CatalogAPIBaseURL:   getEnv("CATALOG_API_BASE_URL", ""),
		CatalogAPIKey:       getEnv("CATALOG_API_KEY", ""),
		CatalogRateLimitRPS: getEnvInt("CATALOG_RATE_LIMIT_RPS", 5),
		CatalogTimeoutMs:    getEnvInt("CATALOG_TIMEOUT_MS", 30000),

		DefaultOperatorID: int64(getEnvInt("DEFAULT_OPERATOR_ID", 1)),

		PriceMin: getEnvFloat("PRICE_MIN"),
		PriceMax: getEnvFloat("PRICE_MAX"),

		ListenerIntervalSec: getEnvInt("LISTENER_INTERVAL_SEC", 30),
		ListenerAutoExport:  getEnvBool("LISTENER_AUTO_EXPORT", true),

		MailProvider:  strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", ""))),
		MailLabel:     getEnv("MAIL_LABEL", "INBOX"),
		MailFetchMax:  getEnvInt("MAIL_FETCH_MAX", 50),
		MailSuppliers: parseSupplierMap(getEnv("MAIL_SUPPLIERS", "")),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", true),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "http://localhost"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: getEnvBool("LOG_DEVELOPMENT", false),
	}

	return cfg, nil
}

// DSN returns the data source name for the configured SQL driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvFloat returns nil when key is unset or not a number.
func getEnvFloat(key string) *float64 {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

// parseSupplierMap reads "vendas@a.ao=7,@b.ao=9": a full sender address or an
// "@domain" suffix mapped to a supplier id. Malformed pairs are ignored.
func parseSupplierMap(value string) map[string]int64 {
	out := map[string]int64{}
	for _, pair := range strings.Split(value, ",") {
		key, id, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if key == "" || err != nil || parsed <= 0 {
			continue
		}
		out[key] = parsed
	}
	return out
}
