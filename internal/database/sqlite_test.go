package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/config"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(t.TempDir(), "test.db"),
		DatabaseDriver: "sqlite3",
	}
	db, err := NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	got, err := db.GetSetting(ctx, SettingAPIToken)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = db.PutSetting(ctx, SettingAPIToken, "first")
	require.NoError(t, err)
	_, err = db.PutSetting(ctx, SettingAPIToken, "second")
	require.NoError(t, err)

	got, err = db.GetSetting(ctx, SettingAPIToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Value)

	require.NoError(t, db.DeleteSetting(ctx, SettingAPIToken))
	got, err = db.GetSetting(ctx, SettingAPIToken)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBankingDetails(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	details, err := db.GetBankingDetails(ctx)
	require.NoError(t, err)
	assert.Nil(t, details)

	want := &models.BankingDetails{
		AccountName:   "Acme Trading",
		BankName:      "FNB",
		AccountNumber: "62000000000",
		BranchCode:    "250655",
		ReferenceHint: utils.ToPtr("Use invoice number"),
	}
	require.NoError(t, db.SaveBankingDetails(ctx, want))

	details, err = db.GetBankingDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, details)
}

func TestSweepLog(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	older := &SweepEntry{Kind: "invoice", EntityID: "i1", Label: "INV-1", FromStatus: "Sent", ToStatus: "Overdue",
		CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &SweepEntry{Kind: "quotation", EntityID: "q1", Label: "QUO-1", FromStatus: "Sent", ToStatus: "Expired",
		Error: utils.ToPtr("HTTP 500")}
	require.NoError(t, db.RecordSweepEntry(ctx, older))
	require.NoError(t, db.RecordSweepEntry(ctx, newer))
	assert.NotEmpty(t, newer.ID)

	entries, err := db.ListSweepEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "q1", entries[0].EntityID)
	require.NotNil(t, entries[0].Error)
	assert.Equal(t, "HTTP 500", *entries[0].Error)
	assert.Nil(t, entries[1].Error)
}
