package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gastropos/internal/cash"

	"github.com/joho/godotenv"
)

const (
	defaultPort            = "8000"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultBackendTimeout  = 15 * time.Second
	defaultBackupTTL       = 24 * time.Hour
	defaultSweepInterval   = 10 * time.Minute
	defaultSessionTTL      = 12 * time.Hour

	StorageMemory = "memory"
	StorageR2     = "r2"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Backend  BackendConfig
	Storage  StorageConfig
	Cash     CashConfig
	Invoice  InvoiceDefaults
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// PublicBaseURL prefixes invoice URLs served by the API itself.
	PublicBaseURL string
}

// DatabaseConfig is optional; an empty URL selects in-memory repositories.
type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
}

// BackendConfig points at the remote invoicing API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	Driver          string
	R2Endpoint      string
	R2AccessKey     string
	R2SecretKey     string
	R2Bucket        string
	R2PublicBaseURL string
}

type CashConfig struct {
	DenominationsFile string
	BackupTTL         time.Duration
	SweepInterval     time.Duration
	SessionTTL        time.Duration
}

// InvoiceDefaults fill optional customer data on the invoice.
type InvoiceDefaults struct {
	Address string
	Phone   string
	DV      string
	Notes   string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Load reads the environment, loading .env first outside production.
// Only malformed values fail here; see ValidateAPI for required ones.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	var invalid []string

	cfg := &Config{
		Env: getenv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:            getenv("PORT", defaultPort),
			ReadTimeout:     durationEnv("SERVER_READ_TIMEOUT", defaultReadTimeout, &invalid),
			WriteTimeout:    durationEnv("SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &invalid),
			ShutdownTimeout: durationEnv("SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &invalid),
			AllowedOrigins:  listEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			PublicBaseURL:   getenv("PUBLIC_BASE_URL", "http://localhost:"+getenv("PORT", defaultPort)),
		},
		Database: DatabaseConfig{
			URL: getenv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getenv("JWT_SECRET", ""),
		},
		Backend: BackendConfig{
			BaseURL: getenv("BILLING_API_URL", ""),
			Timeout: durationEnv("BILLING_API_TIMEOUT", defaultBackendTimeout, &invalid),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(getenv("INVOICE_STORAGE", StorageMemory)),
			R2Endpoint:      getenv("R2_ENDPOINT", ""),
			R2AccessKey:     getenv("R2_ACCESS_KEY", ""),
			R2SecretKey:     getenv("R2_SECRET_KEY", ""),
			R2Bucket:        getenv("R2_BUCKET_NAME", ""),
			R2PublicBaseURL: getenv("R2_PUBLIC_BASE_URL", ""),
		},
		Cash: CashConfig{
			DenominationsFile: getenv("DENOMINATIONS_FILE", ""),
			BackupTTL:         durationEnv("BACKUP_TTL", defaultBackupTTL, &invalid),
			SweepInterval:     durationEnv("BACKUP_SWEEP_INTERVAL", defaultSweepInterval, &invalid),
			SessionTTL:        durationEnv("CASH_SESSION_TTL", defaultSessionTTL, &invalid),
		},
		Invoice: InvoiceDefaults{
			Address: getenv("INVOICE_DEFAULT_ADDRESS", "KR 3A 17 98"),
			Phone:   getenv("INVOICE_DEFAULT_PHONE", "3503590606"),
			DV:      getenv("INVOICE_DEFAULT_DV", "0"),
			Notes:   getenv("INVOICE_DEFAULT_NOTES", "SIN NOTA"),
		},
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

// ValidateAPI checks the settings only the HTTP API needs.
func (c *Config) ValidateAPI() error {
	var missing []string

	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Backend.BaseURL == "" {
		missing = append(missing, "BILLING_API_URL")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageR2:
		required := []struct{ key, value string }{
			{"R2_ENDPOINT", c.Storage.R2Endpoint},
			{"R2_ACCESS_KEY", c.Storage.R2AccessKey},
			{"R2_SECRET_KEY", c.Storage.R2SecretKey},
			{"R2_BUCKET_NAME", c.Storage.R2Bucket},
			{"R2_PUBLIC_BASE_URL", c.Storage.R2PublicBaseURL},
		}
		for _, r := range required {
			if r.value == "" {
				missing = append(missing, r.key)
			}
		}
	default:
		missing = append(missing, "INVOICE_STORAGE")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// Denominations loads the configured table, or the built-in one when no
// file is set.
func (c CashConfig) Denominations() (*cash.Denominations, error) {
	if c.DenominationsFile == "" {
		return cash.DefaultDenominations(), nil
	}
	return cash.LoadDenominations(c.DenominationsFile)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration, invalid *[]string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*invalid = append(*invalid, key)
		return fallback
	}
	return d
}

func listEnv(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
