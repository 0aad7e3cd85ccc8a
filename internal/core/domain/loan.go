package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the state of a loan in its lifecycle:
// pending -> approved -> active -> repaid, with active -> overdue -> defaulted
// as the delinquency path and cancelled reachable from pending/approved.
type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanActive    LoanStatus = "active"
	LoanRepaid    LoanStatus = "repaid"
	LoanOverdue   LoanStatus = "overdue"
	LoanDefaulted LoanStatus = "defaulted"
	LoanCancelled LoanStatus = "cancelled"
)

// loanTransitions enumerates the permitted status transitions.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPending:  {LoanApproved, LoanCancelled},
	LoanApproved: {LoanActive, LoanCancelled},
	LoanActive:   {LoanRepaid, LoanOverdue},
	LoanOverdue:  {LoanRepaid, LoanDefaulted},
	// repaid, defaulted and cancelled are terminal
}

// CanTransition reports whether a loan may move from one status to another.
func (s LoanStatus) CanTransition(to LoanStatus) bool {
	for _, next := range loanTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (s LoanStatus) IsTerminal() bool {
	return len(loanTransitions[s]) == 0
}

// AcceptsPayment reports whether payments may be applied in this status.
func (s LoanStatus) AcceptsPayment() bool {
	return s == LoanActive || s == LoanOverdue
}

// Loan is an interest-free credit extended from a shared account's balance to
// one borrowing member. Invariant: RemainingBalance = Amount - AmountPaid,
// monotonically non-increasing; reaching <= 0 forces status repaid.
type Loan struct {
	LoanID     string          `json:"loanID"` // Primary Key (UUID)
	AccountID  string          `json:"accountID"`
	BorrowerID string          `json:"borrowerID"`
	Amount     decimal.Decimal `json:"amount"` // > 0
	Purpose    string          `json:"purpose"`
	Status     LoanStatus      `json:"status"`

	TermMonths     int             `json:"termMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"` // Amount / TermMonths, computed once

	RequestedAt time.Time  `json:"requestedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	DisbursedAt *time.Time `json:"disbursedAt,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"` // Disbursement + 30*TermMonths days
	RepaidAt    *time.Time `json:"repaidAt,omitempty"`

	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`

	ApprovedBy    *string `json:"approvedBy,omitempty"`
	ApprovalNotes string  `json:"approvalNotes"`

	ReferenceNumber string `json:"referenceNumber"` // LOAN-XXXXXXXX, unique
	Notes           string `json:"notes"`
	AuditFields
}

// DueDateFrom computes the due date for a disbursement at the given time.
// Months are approximated as fixed 30-day periods, not calendar months.
func DueDateFrom(disbursedAt time.Time, termMonths int) time.Time {
	return disbursedAt.AddDate(0, 0, 30*termMonths)
}

// MonthlyPaymentFor divides the principal evenly across the term, rounded to
// 2 fractional digits. No remainder correction is applied to the last
// installment; repayment progress is tracked by RemainingBalance instead.
func MonthlyPaymentFor(amount decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
}
