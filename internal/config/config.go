package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	APIBaseURL string `env:"API_BASE_URL" env-default:"http://localhost:5000"`
	APIToken   string `env:"API_TOKEN"`

	DatabaseURL    string `env:"DATABASE_URL" env-default:"./biz.db"`
	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"sqlite3"`

	SweepDelay     time.Duration `env:"SWEEP_DELAY" env-default:"5s"`
	InvoicePrefix  string        `env:"INVOICE_PREFIX" env-default:"INV"`
	InvoiceDueDays int           `env:"INVOICE_DUE_DAYS" env-default:"7"`
}

// Load reads .env (when present) and the process environment. Non-empty
// arguments override the environment, mirroring the root command's flags.
func Load(apiURL, dbConn string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if dbConn != "" {
		cfg.DatabaseURL = dbConn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite3", "libsql":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (use sqlite3 or libsql)", c.DatabaseDriver)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.InvoiceDueDays < 0 {
		return fmt.Errorf("INVOICE_DUE_DAYS must not be negative")
	}
	if c.SweepDelay < 0 {
		return fmt.Errorf("SWEEP_DELAY must not be negative")
	}
	return nil
}

func (c *Config) Dump() {
	fmt.Printf("Environment: %s\n", c.Env)
	fmt.Printf("API Base URL: %s\n", c.APIBaseURL)
	fmt.Printf("Database URL: %s\n", c.DatabaseURL)
	fmt.Printf("Database Driver: %s\n", c.DatabaseDriver)
	fmt.Printf("Sweep Delay: %s\n", c.SweepDelay)
	fmt.Printf("Invoice Prefix: %s\n", c.InvoicePrefix)
	fmt.Printf("Invoice Due Days: %d\n", c.InvoiceDueDays)
}
