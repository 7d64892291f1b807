package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformedValue is returned when a server field cannot be decoded into its
// declared shape.
var ErrMalformedValue = errors.New("malformed value")

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Date is a calendar date at local midnight. The zero value means "no date".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: StartOfDay(t)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return Date{Time: t}, nil
	}
	for _, layout := range dateLayouts[1:] {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.In(time.Local)), nil
		}
	}
	return Date{}, fmt.Errorf("%w: date %q", ErrMalformedValue, s)
}

func (d Date) Valid() bool {
	return !d.IsZero()
}

// IsPast reports whether d falls on a calendar day strictly before today.
func (d Date) IsPast(today time.Time) bool {
	if !d.Valid() {
		return false
	}
	return StartOfDay(d.Time).Before(StartOfDay(today))
}

func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: date %s", ErrMalformedValue, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Percent is a completion percentage clamped to [0,100].
type Percent int

func ClampPercent(v int) Percent {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return Percent(v)
}

// ClampPercentFloat rounds f to a whole percentage. It clamps before converting
// because out-of-range floats have no defined int value.
func ClampPercentFloat(f float64) Percent {
	if math.IsNaN(f) {
		return 0
	}
	return Percent(math.Round(math.Min(math.Max(f, 0), 100)))
}

func (p Percent) Int() int {
	return int(p)
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	raw := string(b)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*p = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: percentage %s", ErrMalformedValue, string(b))
	}
	*p = ClampPercentFloat(f)
	return nil
}

// UnmarshalJSON records which of the three amounts the server left out, so
// Normalize can reject a summary that would otherwise read as all zeros.
func (s *PaymentSummary) UnmarshalJSON(b []byte) error {
	var raw struct {
		InvoiceTotal *decimal.Decimal `json:"invoice_total"`
		TotalPaid    *decimal.Decimal `json:"total_paid"`
		BalanceDue   *decimal.Decimal `json:"balance_due"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*s = PaymentSummary{}
	for _, f := range []struct {
		name string
		src  *decimal.Decimal
		dst  *decimal.Decimal
	}{
		{"invoice_total", raw.InvoiceTotal, &s.InvoiceTotal},
		{"total_paid", raw.TotalPaid, &s.TotalPaid},
		{"balance_due", raw.BalanceDue, &s.BalanceDue},
	} {
		if f.src == nil {
			s.missing = append(s.missing, f.name)
			continue
		}
		*f.dst = *f.src
	}
	return nil
}
