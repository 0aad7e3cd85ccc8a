package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// RequestLoanRequest defines the payload for requesting a loan.
type RequestLoanRequest struct {
	AccountID  string          `json:"accountID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Purpose    string          `json:"purpose" binding:"required"`
	TermMonths int             `json:"termMonths" binding:"required,gt=0"`
	Notes      string          `json:"notes"`
}

// ApproveLoanRequest defines the payload for approving a pending loan.
type ApproveLoanRequest struct {
	Notes string `json:"notes"`
}

// LoanPaymentRequest defines the payload for a loan repayment.
type LoanPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
}

// LoanResponse is the API representation of a loan.
type LoanResponse struct {
	LoanID           string          `json:"loanID"`
	AccountID        string          `json:"accountID"`
	BorrowerID       string          `json:"borrowerID"`
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	Status           string          `json:"status"`
	TermMonths       int             `json:"termMonths"`
	MonthlyPayment   decimal.Decimal `json:"monthlyPayment"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	ReferenceNumber  string          `json:"referenceNumber"`
	RequestedAt      time.Time       `json:"requestedAt"`
	ApprovedAt       *time.Time      `json:"approvedAt,omitempty"`
	DisbursedAt      *time.Time      `json:"disbursedAt,omitempty"`
	DueDate          *time.Time      `json:"dueDate,omitempty"`
	RepaidAt         *time.Time      `json:"repaidAt,omitempty"`
}

// LoanSummaryResponse is the display projection of a loan, including the
// borrower's display name. Lock-free read; may trail in-flight writes.
type LoanSummaryResponse struct {
	LoanID           string          `json:"loanID"`
	ReferenceNumber  string          `json:"referenceNumber"`
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	Status           string          `json:"status"`
	BorrowerName     string          `json:"borrowerName"`
	TermMonths       int             `json:"termMonths"`
	MonthlyPayment   decimal.Decimal `json:"monthlyPayment"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	DueDate          *time.Time      `json:"dueDate,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ToLoanResponse converts a domain Loan to its API representation.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:           l.LoanID,
		AccountID:        l.AccountID,
		BorrowerID:       l.BorrowerID,
		Amount:           l.Amount,
		Purpose:          l.Purpose,
		Status:           string(l.Status),
		TermMonths:       l.TermMonths,
		MonthlyPayment:   l.MonthlyPayment,
		AmountPaid:       l.AmountPaid,
		RemainingBalance: l.RemainingBalance,
		ReferenceNumber:  l.ReferenceNumber,
		RequestedAt:      l.RequestedAt,
		ApprovedAt:       l.ApprovedAt,
		DisbursedAt:      l.DisbursedAt,
		DueDate:          l.DueDate,
		RepaidAt:         l.RepaidAt,
	}
}

// ToLoanResponses converts a slice of loans.
func ToLoanResponses(ls []domain.Loan) []LoanResponse {
	out := make([]LoanResponse, len(ls))
	for i := range ls {
		out[i] = ToLoanResponse(&ls[i])
	}
	return out
}
