package models

import (
	"fmt"
	"strings"
)

// Normalize fills server omissions with their documented defaults and rejects
// values outside the known enums. It runs on every decoded API response.
func (t *Task) Normalize() error {
	if t.ID == "" {
		return fmt.Errorf("%w: task without id", ErrMalformedValue)
	}
	if t.ProgressMode == "" {
		t.ProgressMode = ProgressModeManual
	}
	if !t.ProgressMode.Valid() {
		return fmt.Errorf("%w: task %s has progress mode %q", ErrMalformedValue, t.ID, t.ProgressMode)
	}
	if t.Status == "" {
		t.Status = TaskStatusToDo
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: task %s has status %q", ErrMalformedValue, t.ID, t.Status)
	}
	for i, step := range t.Steps {
		if step.Weight < 0 {
			return fmt.Errorf("%w: task %s step %d has negative weight", ErrMalformedValue, t.ID, i+1)
		}
	}
	return nil
}

func (p *Project) Normalize() error {
	if p.ID == "" {
		return fmt.Errorf("%w: project without id", ErrMalformedValue)
	}
	return nil
}

func (q *Quotation) Normalize() error {
	if q.ID == "" {
		return fmt.Errorf("%w: quotation without id", ErrMalformedValue)
	}
	if q.Status == "" {
		q.Status = QuotationStatusDraft
	}
	if !q.Status.Valid() {
		return fmt.Errorf("%w: quotation %s has status %q", ErrMalformedValue, q.ID, q.Status)
	}
	return nil
}

func (i *Invoice) Normalize() error {
	if i.ID == "" {
		return fmt.Errorf("%w: invoice without id", ErrMalformedValue)
	}
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	if !i.Status.Valid() {
		return fmt.Errorf("%w: invoice %s has status %q", ErrMalformedValue, i.ID, i.Status)
	}
	return nil
}

func (p *Payment) Normalize() error {
	if p.ID == "" {
		return fmt.Errorf("%w: payment without id", ErrMalformedValue)
	}
	return nil
}

func (c *Customer) Normalize() error {
	if c.ID == "" {
		return fmt.Errorf("%w: customer without id", ErrMalformedValue)
	}
	return nil
}

func (a *Account) Normalize() error {
	if a.ID == "" {
		return fmt.Errorf("%w: account without id", ErrMalformedValue)
	}
	return nil
}

func (u *User) Normalize() error {
	if u.ID == "" {
		return fmt.Errorf("%w: user without id", ErrMalformedValue)
	}
	return nil
}

func (p *ProductService) Normalize() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product without id", ErrMalformedValue)
	}
	return nil
}

func (s *PaymentSummary) Normalize() error {
	if len(s.missing) > 0 {
		return fmt.Errorf("%w: payment summary without %s", ErrMalformedValue, strings.Join(s.missing, ", "))
	}
	return nil
}
