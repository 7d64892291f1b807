package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/biz/internal/models"
)

func seedSweep(f *fixture) {
	f.fake.AddQuotation(models.Quotation{ID: "q1", QuotationNumber: "QUO-1", Status: models.QuotationStatusSent, ExpiryDate: day(-1)})
	f.fake.AddQuotation(models.Quotation{ID: "q2", QuotationNumber: "QUO-2", Status: models.QuotationStatusAccepted, ExpiryDate: day(-5)})
	f.fake.AddQuotation(models.Quotation{ID: "q3", QuotationNumber: "QUO-3", Status: models.QuotationStatusSent, ExpiryDate: day(0)})

	f.fake.AddInvoice(models.Invoice{ID: "i1", InvoiceNumber: "INV-1", Status: models.InvoiceStatusSent, DueDate: day(-3)})
	f.fake.AddInvoice(models.Invoice{ID: "i2", InvoiceNumber: "INV-2", Status: models.InvoiceStatusPaid, DueDate: day(-3)})

	f.fake.AddTask(models.Task{ID: "t1", Title: "Follow up", Status: models.TaskStatusInProgress, ProgressPercentage: 40, DueDate: day(-1)})
	f.fake.AddTask(models.Task{ID: "t2", Title: "Finished", Status: models.TaskStatusInProgress, ProgressPercentage: 100, DueDate: day(-1)})
	f.fake.AddTask(models.Task{ID: "t3", Title: "Shelved", Status: models.TaskStatusArchived, ProgressPercentage: 10, DueDate: day(-1)})
}

func TestSweepAppliesBoundaryTransitions(t *testing.T) {
	f := newFixture(t)
	seedSweep(f)
	ctx := context.Background()

	report, err := f.svc.Sweep(ctx, SweepOptions{Delay: 0})
	require.NoError(t, err)
	assert.Equal(t, 8, report.Scanned)
	assert.Zero(t, report.Failed())
	require.Len(t, report.Changes, 3)

	assert.Equal(t, models.QuotationStatusExpired, f.fake.Quotation("q1").Status)
	assert.Equal(t, models.QuotationStatusAccepted, f.fake.Quotation("q2").Status)
	assert.Equal(t, models.QuotationStatusSent, f.fake.Quotation("q3").Status)
	assert.Equal(t, models.InvoiceStatusOverdue, f.fake.Invoice("i1").Status)
	assert.Equal(t, models.InvoiceStatusPaid, f.fake.Invoice("i2").Status)
	assert.Equal(t, models.TaskStatusOverdue, f.fake.Task("t1").Status)
	assert.Equal(t, models.Percent(40), f.fake.Task("t1").ProgressPercentage)
	assert.Equal(t, models.TaskStatusInProgress, f.fake.Task("t2").Status)
	assert.Equal(t, models.TaskStatusArchived, f.fake.Task("t3").Status)

	history, err := f.svc.SweepHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, entry := range history {
		assert.Nil(t, entry.Error)
	}

	again, err := f.svc.Sweep(ctx, SweepOptions{Delay: 0})
	require.NoError(t, err)
	assert.Empty(t, again.Changes)
}

func TestSweepDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	seedSweep(f)

	report, err := f.svc.Sweep(context.Background(), SweepOptions{DryRun: true, Delay: -1})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Len(t, report.Changes, 3)
	assert.Empty(t, f.fake.Requests("PUT "))
	assert.Equal(t, models.QuotationStatusSent, f.fake.Quotation("q1").Status)
}

func TestSweepCancelledDuringDelay(t *testing.T) {
	f := newFixture(t)
	seedSweep(f)

	ctx, cancel := context.WithCancel(context.Background())
	f.fake.SetBefore(func(r *http.Request) {
		if r.URL.Path == "/api/tasks" {
			cancel()
		}
	})

	_, err := f.svc.Sweep(ctx, SweepOptions{Delay: -1})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.fake.Requests("PUT "))
}

func TestSweepReportsFailedWrites(t *testing.T) {
	f := newFixture(t)
	seedSweep(f)
	f.fake.FailOn(http.MethodPut, "/api/invoices/i1", http.StatusBadGateway)

	report, err := f.svc.Sweep(context.Background(), SweepOptions{Delay: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, models.QuotationStatusExpired, f.fake.Quotation("q1").Status)
	assert.Equal(t, models.TaskStatusOverdue, f.fake.Task("t1").Status)

	history, err := f.svc.SweepHistory(context.Background(), 10)
	require.NoError(t, err)
	failed := 0
	for _, entry := range history {
		if entry.Error != nil {
			failed++
			assert.Equal(t, "i1", entry.EntityID)
		}
	}
	assert.Equal(t, 1, failed)
}
