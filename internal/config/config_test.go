package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	unsetenv(t, "API_BASE_URL", "DATABASE_DRIVER", "SWEEP_DELAY", "INVOICE_DUE_DAYS", "INVOICE_PREFIX")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Second, cfg.SweepDelay)
	assert.Equal(t, 7, cfg.InvoiceDueDays)
	assert.Equal(t, "INV", cfg.InvoicePrefix)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	unsetenv(t, "DATABASE_DRIVER", "INVOICE_DUE_DAYS")
	t.Setenv("API_BASE_URL", "https://env.example.com")
	t.Setenv("SWEEP_DELAY", "250ms")

	cfg, err := Load("https://flag.example.com", "/tmp/x.db")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/x.db", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.SweepDelay)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	unsetenv(t, "SWEEP_DELAY", "INVOICE_DUE_DAYS")
	t.Setenv("DATABASE_DRIVER", "postgres")
	_, err := Load("", "")
	assert.Error(t, err)
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		key := key // per-iteration copy; go.mod targets go1.21 loop semantics
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, prev) })
		}
		os.Unsetenv(key)
	}
}

// chdir mirrors testing.T.Chdir (go1.24+): change into dir and restore the
// previous working directory when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
