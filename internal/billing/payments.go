package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/biz/internal/models"
	"github.com/jesses-code-adventures/biz/internal/utils"
)

var (
	ErrNonPositiveAmount = errors.New("payment amount must be greater than 0")
	ErrOverpayment       = errors.New("payment exceeds the balance due")
	ErrAccountRequired   = errors.New("a ledger account is required")
	ErrPaymentDate       = errors.New("a payment date is required")
)

// PaymentEpsilon absorbs floating point drift in server-side balance sums.
var PaymentEpsilon = decimal.RequireFromString("0.005")

// ValidatePayment accepts 0 < amount <= balanceDue + PaymentEpsilon.
func ValidatePayment(amount, balanceDue decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(balanceDue.Add(PaymentEpsilon)) {
		return fmt.Errorf("%w: %s > %s", ErrOverpayment, amount.StringFixed(2), balanceDue.StringFixed(2))
	}
	return nil
}

// ValidatePaymentRequest checks a payment completely before it is posted.
func ValidatePaymentRequest(p *models.Payment, balanceDue decimal.Decimal) error {
	if err := ValidatePayment(p.AmountPaid, balanceDue); err != nil {
		return err
	}
	if strings.TrimSpace(p.AccountID) == "" {
		return ErrAccountRequired
	}
	if !p.PaymentDate.Valid() {
		return ErrPaymentDate
	}
	return nil
}

// PaymentAccounts keeps the accounts that can receive money: those whose type or
// name mentions bank or cash.
func PaymentAccounts(accounts []models.Account) []models.Account {
	return utils.Filter(accounts, func(a models.Account) bool {
		for _, hint := range []string{"bank", "cash"} {
			if utils.ContainsFold(a.Type, hint) || utils.ContainsFold(a.Name, hint) {
				return true
			}
		}
		return false
	})
}

// FindAccount looks an account up by ID or code.
func FindAccount(accounts []models.Account, ref string) (*models.Account, bool) {
	for i := range accounts {
		if accounts[i].ID == ref || (accounts[i].Code != "" && accounts[i].Code == ref) {
			return &accounts[i], true
		}
	}
	return nil, false
}
