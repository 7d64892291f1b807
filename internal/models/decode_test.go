package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentAcceptsNumbersAndStrings(t *testing.T) {
	for raw, want := range map[string]Percent{
		`40`:      40,
		`"40"`:    40,
		`39.6`:    40,
		`"120"`:   100,
		`-5`:      0,
		`null`:    0,
		`""`:      0,
		`"12.4"`:  12,
		`1e20`:    100,
		`-1e20`:   0,
		`"9e300"`: 100,
	} {
		var p Percent
		require.NoError(t, json.Unmarshal([]byte(raw), &p), raw)
		assert.Equal(t, want, p, raw)
	}

	var p Percent
	assert.ErrorIs(t, json.Unmarshal([]byte(`"lots"`), &p), ErrMalformedValue)
	assert.ErrorIs(t, json.Unmarshal([]byte(`true`), &p), ErrMalformedValue)
}

func TestDateFormats(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-04-01"`), &d))
	assert.Equal(t, "2026-04-01", d.String())
	assert.Equal(t, 0, d.Hour())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.False(t, d.Valid())

	require.NoError(t, json.Unmarshal([]byte(`"2026-04-01T10:30:00"`), &d))
	assert.Equal(t, "2026-04-01", d.String())

	assert.ErrorIs(t, json.Unmarshal([]byte(`"soon"`), &d), ErrMalformedValue)

	b, err := json.Marshal(struct {
		Due Date `json:"due"`
	}{Due: NewDate(time.Date(2026, 4, 1, 18, 0, 0, 0, time.Local))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2026-04-01"}`, string(b))

	b, err = json.Marshal(struct {
		Due Date `json:"due"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":null}`, string(b))
}

func TestDateIsPast(t *testing.T) {
	today := time.Date(2026, 4, 2, 0, 30, 0, 0, time.Local)
	assert.True(t, NewDate(today.AddDate(0, 0, -1)).IsPast(today))
	assert.False(t, NewDate(today).IsPast(today.Add(20*time.Hour)))
	assert.False(t, Date{}.IsPast(today))
}

func TestTaskNormalize(t *testing.T) {
	task := Task{ID: "t1"}
	require.NoError(t, task.Normalize())
	assert.Equal(t, ProgressModeManual, task.ProgressMode)
	assert.Equal(t, TaskStatusToDo, task.Status)

	task.Status = "Blocked"
	assert.ErrorIs(t, task.Normalize(), ErrMalformedValue)

	assert.ErrorIs(t, (&Task{}).Normalize(), ErrMalformedValue)
}

func TestPaymentSummaryRequiresAllAmounts(t *testing.T) {
	var s PaymentSummary
	require.NoError(t, json.Unmarshal([]byte(`{"invoice_total":"500.00","total_paid":150,"balance_due":"350"}`), &s))
	require.NoError(t, s.Normalize())
	assert.Equal(t, "350", s.BalanceDue.String())
	assert.Equal(t, "150", s.TotalPaid.String())

	var empty PaymentSummary
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	err := empty.Normalize()
	assert.ErrorIs(t, err, ErrMalformedValue)
	assert.ErrorContains(t, err, "invoice_total, total_paid, balance_due")

	var renamed PaymentSummary
	require.NoError(t, json.Unmarshal([]byte(`{"invoice_total":1,"paid":1,"balance_due":null}`), &renamed))
	assert.ErrorContains(t, renamed.Normalize(), "total_paid, balance_due")
}
