package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/config"
	"github.com/jesses-code-adventures/biz/internal/database"
	"github.com/jesses-code-adventures/biz/internal/models"
)

// DefaultQuotationValidDays is used when a quotation is created without an expiry date.
const DefaultQuotationValidDays = 30

type DashboardService struct {
	api *api.Client
	db  database.DB
	cfg *config.Config
	log zerolog.Logger

	now        func() time.Time
	invoiceNos *billing.NumberGenerator
	quoteNos   *billing.NumberGenerator
}

type Option func(*DashboardService)

// WithClock pins "today" for date boundary checks and document numbers.
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) {
		s.now = now
		s.invoiceNos.Now = now
		s.quoteNos.Now = now
	}
}

func NewDashboardService(client *api.Client, db database.DB, cfg *config.Config, log zerolog.Logger, opts ...Option) *DashboardService {
	s := &DashboardService{
		api:        client,
		db:         db,
		cfg:        cfg,
		log:        log.With().Str("component", "service").Logger(),
		now:        time.Now,
		invoiceNos: billing.NewNumberGenerator(cfg.InvoicePrefix),
		quoteNos:   billing.NewNumberGenerator("QUO"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DashboardService) Today() time.Time {
	return models.StartOfDay(s.now())
}

func (s *DashboardService) Config() *config.Config {
	return s.cfg
}

// ResolveToken prefers an explicitly configured token over the one saved by
// `auth login`.
func ResolveToken(ctx context.Context, cfg *config.Config, db database.DB) (string, error) {
	if cfg.APIToken != "" {
		return cfg.APIToken, nil
	}
	setting, err := db.GetSetting(ctx, database.SettingAPIToken)
	if err != nil {
		return "", fmt.Errorf("failed to read saved token: %w", err)
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}
