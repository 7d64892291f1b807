package billing

import (
	"strings"

	"github.com/jesses-code-adventures/biz/internal/models"
)

// BankingHeader marks the start of the banking block inside a notes field.
// Everything from the header to the end of the notes belongs to the block.
const BankingHeader = "--- Banking Details ---"

func ValidateBankingDetails(d *models.BankingDetails) error {
	verr := &ValidationError{}
	if strings.TrimSpace(d.AccountName) == "" {
		verr.add("account name is required")
	}
	if strings.TrimSpace(d.BankName) == "" {
		verr.add("bank name is required")
	}
	if strings.TrimSpace(d.AccountNumber) == "" {
		verr.add("account number is required")
	}
	if strings.TrimSpace(d.BranchCode) == "" {
		verr.add("branch code is required")
	}
	return verr.orNil()
}

func FormatBankingBlock(d *models.BankingDetails) string {
	lines := []string{
		BankingHeader,
		"Account Name: " + d.AccountName,
		"Bank: " + d.BankName,
		"Account Number: " + d.AccountNumber,
		"Branch Code: " + d.BranchCode,
	}
	if d.AccountType != nil && *d.AccountType != "" {
		lines = append(lines, "Account Type: "+*d.AccountType)
	}
	if d.SwiftCode != nil && *d.SwiftCode != "" {
		lines = append(lines, "SWIFT: "+*d.SwiftCode)
	}
	if d.ReferenceHint != nil && *d.ReferenceHint != "" {
		lines = append(lines, "Reference: "+*d.ReferenceHint)
	}
	return strings.Join(lines, "\n")
}

// UpsertBankingBlock replaces any existing banking block in notes with block, or
// appends it. Applying the same block twice yields the same notes.
func UpsertBankingBlock(notes, block string) string {
	base := strings.TrimRight(RemoveBankingBlock(notes), " \t\r\n")
	block = strings.TrimSpace(block)
	if block == "" {
		return base
	}
	if base == "" {
		return block
	}
	return base + "\n\n" + block
}

// RemoveBankingBlock strips the banking block, leaving the rest of the notes intact.
func RemoveBankingBlock(notes string) string {
	idx := strings.Index(notes, BankingHeader)
	if idx < 0 {
		return notes
	}
	return strings.TrimRight(notes[:idx], " \t\r\n")
}
