package database

import (
	"context"

	"github.com/jesses-code-adventures/biz/internal/models"
)

const (
	SettingBankingDetails = "default_banking_details"
	SettingAPIToken       = "api_token"
)

// DB is the local store for state that lives outside the remote API.
type DB interface {
	Close() error

	GetSetting(ctx context.Context, key string) (*Setting, error)
	PutSetting(ctx context.Context, key, value string) (*Setting, error)
	DeleteSetting(ctx context.Context, key string) error

	GetBankingDetails(ctx context.Context) (*models.BankingDetails, error)
	SaveBankingDetails(ctx context.Context, details *models.BankingDetails) error

	RecordSweepEntry(ctx context.Context, entry *SweepEntry) error
	ListSweepEntries(ctx context.Context, limit int32) ([]*SweepEntry, error)
}
