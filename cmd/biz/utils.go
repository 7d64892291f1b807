package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/service"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

// matchStatus resolves user input such as "in-progress" or "partially_paid"
// against the known statuses, ignoring case, spaces, dashes and underscores.
func matchStatus[S ~string](input string, options []S) (S, error) {
	squash := func(s string) string {
		return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	}
	want := squash(input)
	for _, option := range options {
		if squash(string(option)) == want {
			return option, nil
		}
	}
	names := make([]string, len(options))
	for i, option := range options {
		names[i] = string(option)
	}
	var zero S
	return zero, fmt.Errorf("%w %q (expected one of: %s)", service.ErrInvalidStatus, input, strings.Join(names, ", "))
}

var (
	taskStatuses = []models.TaskStatus{
		models.TaskStatusToDo, models.TaskStatusInProgress, models.TaskStatusReview,
		models.TaskStatusDone, models.TaskStatusOverdue, models.TaskStatusArchived,
	}
	quotationStatuses = []models.QuotationStatus{
		models.QuotationStatusDraft, models.QuotationStatusSent, models.QuotationStatusAccepted,
		models.QuotationStatusDeclined, models.QuotationStatusExpired, models.QuotationStatusInvoiced,
	}
	invoiceStatuses = []models.InvoiceStatus{
		models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusPartiallyPaid,
		models.InvoiceStatusPaid, models.InvoiceStatusOverdue,
	}
)

func parseDate(s string) (models.Date, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %w", err)
	}
	return d, nil
}

// parseItem reads a --item flag. Two forms are accepted:
//
//	"Consulting|2|100|0.15"       description|quantity|unit price|tax rate
//	"product=Consulting|2"        product reference|quantity, optionally |price|tax
//
// The tax rate is a fraction (0.15 for 15%).
func parseItem(spec string) (service.ItemDraft, error) {
	parts := strings.Split(spec, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var item service.ItemDraft
	if ref, ok := strings.CutPrefix(parts[0], "product="); ok {
		item.ProductRef = ref
	} else {
		item.Description = parts[0]
	}

	item.Quantity = decimal.NewFromInt(1)
	if len(parts) > 1 && parts[1] != "" {
		qty, err := decimal.NewFromString(parts[1])
		if err != nil {
			return item, fmt.Errorf("invalid quantity %q in item %q", parts[1], spec)
		}
		item.Quantity = qty
	}
	if len(parts) > 2 && parts[2] != "" {
		price, err := decimal.NewFromString(parts[2])
		if err != nil {
			return item, fmt.Errorf("invalid unit price %q in item %q", parts[2], spec)
		}
		item.UnitPrice = &price
	}
	if len(parts) > 3 && parts[3] != "" {
		rate, err := decimal.NewFromString(parts[3])
		if err != nil {
			return item, fmt.Errorf("invalid tax rate %q in item %q", parts[3], spec)
		}
		item.TaxRate = &rate
	}
	if len(parts) > 4 {
		return item, fmt.Errorf("too many fields in item %q", spec)
	}
	if item.ProductRef == "" && item.UnitPrice == nil {
		return item, fmt.Errorf("item %q needs a unit price or product=<name>", spec)
	}
	return item, nil
}

func parseItems(specs []string) ([]service.ItemDraft, error) {
	items := make([]service.ItemDraft, 0, len(specs))
	for _, spec := range specs {
		item, err := parseItem(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// parseStep reads "title" or "title:weight".
func parseStep(spec string) (models.Step, error) {
	title, weight := spec, 1
	if i := strings.LastIndex(spec, ":"); i > 0 {
		if w, err := strconv.Atoi(strings.TrimSpace(spec[i+1:])); err == nil {
			title, weight = spec[:i], w
		}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Step{}, fmt.Errorf("step title cannot be empty")
	}
	if weight < 0 {
		return models.Step{}, fmt.Errorf("step weight cannot be negative")
	}
	return models.Step{Title: title, Weight: weight}, nil
}

// parseIndex turns a 1-based position from the command line into a slice index.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q, expected a number from 1", s)
	}
	return n - 1, nil
}

func progressBar(pct int) string {
	filled := pct / 10
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", 10-filled), pct)
}

func formatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func printTask(task *models.Task) {
	fmt.Printf("%s | %s | %s | %s\n", task.ID, task.Title, task.Status, progressBar(task.ProgressPercentage.Int()))
	fmt.Printf("  Mode: %s", task.ProgressMode)
	switch task.ProgressMode {
	case models.ProgressModeTarget:
		fmt.Printf(" (%g / %g)", utils.FromPtr(task.ProgressCurrent), utils.FromPtr(task.ProgressGoal))
	case models.ProgressModeSteps:
		done := 0
		for _, step := range task.Steps {
			if step.IsDone {
				done++
			}
		}
		fmt.Printf(" (%d/%d steps)", done, len(task.Steps))
	}
	fmt.Printf(" | Due: %s\n", orDash(task.DueDate.String()))
}

func printLineItems(items []models.LineItem) {
	for i, item := range items {
		fmt.Printf("  %d. %s | %s x %s | tax %s%% | %s\n",
			i+1,
			item.Description,
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			item.TaxRate.Shift(2).StringFixed(1),
			item.LineTotal.StringFixed(2))
	}
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
