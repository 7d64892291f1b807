package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/billing"
	"github.com/jesses-code-adventures/biz/internal/database"
	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/progress"
)

const (
	KindQuotation = "quotation"
	KindInvoice   = "invoice"
	KindTask      = "task"
)

type SweepOptions struct {
	DryRun bool
	// Delay between loading and writing. Negative means use SWEEP_DELAY.
	Delay time.Duration
}

// SweepChange is one boundary transition, applied or (in a dry run) planned.
type SweepChange struct {
	Kind  string
	ID    string
	Label string
	From  string
	To    string
	Err   error
}

type SweepReport struct {
	DryRun  bool
	Scanned int
	Changes []SweepChange
}

func (r *SweepReport) Failed() int {
	n := 0
	for _, c := range r.Changes {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Sweep moves every quotation past its expiry to Expired and every invoice and
// task past its due date to Overdue, skipping the states that are already final.
// Everything is loaded first; the writes are issued once the delay has elapsed.
// A failed write is reported and does not stop the others.
func (s *DashboardService) Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	quotations, err := s.api.ListQuotations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotations: %w", err)
	}
	invoices, err := s.api.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	today := s.Today()
	report := &SweepReport{DryRun: opts.DryRun, Scanned: len(quotations) + len(invoices) + len(tasks)}

	type pending struct {
		change SweepChange
		write  func() error
	}
	var work []pending

	for i := range quotations {
		q := &quotations[i]
		if !billing.QuotationShouldExpire(q, today) {
			continue
		}
		from := q.Status
		work = append(work, pending{
			change: SweepChange{Kind: KindQuotation, ID: q.ID, Label: q.QuotationNumber,
				From: string(from), To: string(models.QuotationStatusExpired)},
			write: func() error {
				q.Status = models.QuotationStatusExpired
				return s.api.UpdateQuotation(ctx, q.ID, q)
			},
		})
	}

	for i := range invoices {
		inv := &invoices[i]
		if !billing.InvoiceShouldBeOverdue(inv, today) {
			continue
		}
		work = append(work, pending{
			change: SweepChange{Kind: KindInvoice, ID: inv.ID, Label: inv.InvoiceNumber,
				From: string(inv.Status), To: string(models.InvoiceStatusOverdue)},
			write: func() error {
				inv.Status = models.InvoiceStatusOverdue
				return s.api.UpdateInvoice(ctx, inv.ID, inv)
			},
		})
	}

	for i := range tasks {
		t := &tasks[i]
		if !progress.ShouldMarkOverdue(t, today) {
			continue
		}
		work = append(work, pending{
			change: SweepChange{Kind: KindTask, ID: t.ID, Label: t.Title,
				From: string(t.Status), To: string(models.TaskStatusOverdue)},
			write: func() error {
				in := api.TaskInputFrom(t)
				in.Status = models.TaskStatusOverdue
				return s.api.UpdateTask(ctx, t.ID, in)
			},
		})
	}

	if opts.DryRun {
		for _, w := range work {
			report.Changes = append(report.Changes, w.change)
		}
		return report, nil
	}

	if len(work) > 0 {
		delay := opts.Delay
		if delay < 0 {
			delay = s.cfg.SweepDelay
		}
		if err := wait(ctx, delay); err != nil {
			return report, err
		}
	}

	for _, w := range work {
		change := w.change
		change.Err = w.write()

		entry := &database.SweepEntry{Kind: change.Kind, EntityID: change.ID, Label: change.Label,
			FromStatus: change.From, ToStatus: change.To}
		if change.Err != nil {
			msg := change.Err.Error()
			entry.Error = &msg
			s.log.Error().Err(change.Err).Str("kind", change.Kind).Str("id", change.ID).Msg("sweep update failed")
		} else {
			s.log.Info().Str("kind", change.Kind).Str("label", change.Label).Str("to", change.To).Msg("sweep update")
		}
		if err := s.db.RecordSweepEntry(ctx, entry); err != nil {
			s.log.Warn().Err(err).Msg("failed to record sweep entry")
		}

		report.Changes = append(report.Changes, change)
	}
	return report, nil
}

func (s *DashboardService) SweepHistory(ctx context.Context, limit int32) ([]*database.SweepEntry, error) {
	return s.db.ListSweepEntries(ctx, limit)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
