package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusDone       TaskStatus = "Done"
	TaskStatusArchived   TaskStatus = "Archived"
	TaskStatusOverdue    TaskStatus = "Overdue"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusArchived, TaskStatusOverdue:
		return true
	}
	return false
}

type ProgressMode string

const (
	ProgressModeManual ProgressMode = "manual"
	ProgressModeTarget ProgressMode = "target"
	ProgressModeSteps  ProgressMode = "steps"
)

func (m ProgressMode) Valid() bool {
	switch m {
	case ProgressModeManual, ProgressModeTarget, ProgressModeSteps:
		return true
	}
	return false
}

type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "Draft"
	QuotationStatusSent     QuotationStatus = "Sent"
	QuotationStatusAccepted QuotationStatus = "Accepted"
	QuotationStatusDeclined QuotationStatus = "Declined"
	QuotationStatusExpired  QuotationStatus = "Expired"
	QuotationStatusInvoiced QuotationStatus = "Invoiced"
)

func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted,
		QuotationStatusDeclined, QuotationStatusExpired, QuotationStatusInvoiced:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "Draft"
	InvoiceStatusSent          InvoiceStatus = "Sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "Partially Paid"
	InvoiceStatusPaid          InvoiceStatus = "Paid"
	InvoiceStatusOverdue       InvoiceStatus = "Overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

type Step struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Weight   int    `json:"weight"`
	IsDone   bool   `json:"is_done"`
	Position int    `json:"position"`
}

type Task struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Description        *string      `json:"description,omitempty"`
	ProjectID          *string      `json:"project_id,omitempty"`
	AssigneeID         *string      `json:"assignee_id,omitempty"`
	Status             TaskStatus   `json:"status"`
	Priority           *string      `json:"priority,omitempty"`
	DueDate            Date         `json:"due_date"`
	ProgressMode       ProgressMode `json:"progress_mode"`
	ProgressPercentage Percent      `json:"progress_percentage"`
	ProgressGoal       *float64     `json:"progress_goal,omitempty"`
	ProgressCurrent    *float64     `json:"progress_current,omitempty"`
	Steps              []Step       `json:"steps,omitempty"`
	CreatedAt          *time.Time   `json:"created_at,omitempty"`
	UpdatedAt          *time.Time   `json:"updated_at,omitempty"`

	ProjectName  string `json:"project_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
}

// ProgressUpdate is the single write that carries mode-specific progress fields,
// the recomputed percentage and, when it changed, the derived status.
type ProgressUpdate struct {
	ProgressMode       ProgressMode `json:"progress_mode"`
	ProgressPercentage int          `json:"progress_percentage"`
	ProgressGoal       *float64     `json:"progress_goal,omitempty"`
	ProgressCurrent    *float64     `json:"progress_current,omitempty"`
	Steps              []Step       `json:"steps,omitempty"`
	Status             *TaskStatus  `json:"status,omitempty"`
}

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartDate   Date       `json:"start_date"`
	EndDate     Date       `json:"end_date"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`

	// ProgressPercentage is derived client-side from the project's tasks.
	ProgressPercentage int `json:"-"`
}

type LineItem struct {
	ProductServiceID *string         `json:"product_service_id,omitempty"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

type Quotation struct {
	ID              string          `json:"id,omitempty"`
	QuotationNumber string          `json:"quotation_number"`
	CustomerID      *string         `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	QuotationDate   Date            `json:"quotation_date"`
	ExpiryDate      Date            `json:"expiry_date"`
	Currency        string          `json:"currency"`
	Status          QuotationStatus `json:"status"`
	Notes           string          `json:"notes"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	LineItems       []LineItem      `json:"line_items"`
}

type Invoice struct {
	ID            string          `json:"id,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	InvoiceDate   Date            `json:"invoice_date"`
	DueDate       Date            `json:"due_date"`
	Currency      string          `json:"currency"`
	Status        InvoiceStatus   `json:"status"`
	Notes         string          `json:"notes"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	LineItems     []LineItem      `json:"line_items"`
	QuotationID   *string         `json:"quotation_id,omitempty"`
}

type Payment struct {
	ID          string          `json:"id,omitempty"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	PaymentDate Date            `json:"payment_date"`
	Notes       *string         `json:"notes,omitempty"`
	AccountID   string          `json:"account_id,omitempty"`
}

type PaymentSummary struct {
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	BalanceDue   decimal.Decimal `json:"balance_due"`

	missing []string
}

type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
}

type Account struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Profile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	CompanyName *string `json:"company_name,omitempty"`
	Currency    *string `json:"currency,omitempty"`
}

type ProductService struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type BankingDetails struct {
	AccountName   string  `json:"account_name" yaml:"account_name"`
	BankName      string  `json:"bank_name" yaml:"bank_name"`
	AccountNumber string  `json:"account_number" yaml:"account_number"`
	BranchCode    string  `json:"branch_code" yaml:"branch_code"`
	AccountType   *string `json:"account_type,omitempty" yaml:"account_type,omitempty"`
	SwiftCode     *string `json:"swift_code,omitempty" yaml:"swift_code,omitempty"`
	ReferenceHint *string `json:"reference_hint,omitempty" yaml:"reference_hint,omitempty"`
}

func NewUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
