package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan mirrors the loans table. reference_number is unique.
type Loan struct {
	LoanID           string          `json:"loanID"`
	AccountID        string          `json:"accountID"`
	BorrowerID       string          `json:"borrowerID"`
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	Status           string          `json:"status"`
	TermMonths       int             `json:"termMonths"`
	MonthlyPayment   decimal.Decimal `json:"monthlyPayment"`
	RequestedAt      time.Time       `json:"requestedAt"`
	ApprovedAt       *time.Time      `json:"approvedAt"`
	DisbursedAt      *time.Time      `json:"disbursedAt"`
	DueDate          *time.Time      `json:"dueDate"`
	RepaidAt         *time.Time      `json:"repaidAt"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	ApprovedBy       *string         `json:"approvedBy"`
	ApprovalNotes    string          `json:"approvalNotes"`
	ReferenceNumber  string          `json:"referenceNumber"`
	Notes            string          `json:"notes"`
	AuditFields
}
