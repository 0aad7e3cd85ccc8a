package services

import (
	"context"
	"time"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
)

// LoanReaderSvc defines read operations for loan data
type LoanReaderSvc interface {
	// GetLoanByID retrieves a specific loan.
	GetLoanByID(ctx context.Context, loanID string, userID string) (*domain.Loan, error)

	// ListLoansByAccount retrieves loans of an account, optionally filtered by status.
	ListLoansByAccount(ctx context.Context, accountID string, userID string, status *domain.LoanStatus) ([]domain.Loan, error)

	// ListLoansByBorrower retrieves loans requested by a user.
	ListLoansByBorrower(ctx context.Context, borrowerID string, userID string) ([]domain.Loan, error)

	// GetLoanSummary builds the display projection of a loan.
	GetLoanSummary(ctx context.Context, loanID string, userID string) (*dto.LoanSummaryResponse, error)
}

// LoanWriterSvc defines lifecycle operations for loans
type LoanWriterSvc interface {
	// RequestLoan creates a pending loan request against an account.
	RequestLoan(ctx context.Context, req dto.RequestLoanRequest, borrowerID string) (*domain.Loan, error)

	// ApproveLoan moves a pending loan to approved.
	ApproveLoan(ctx context.Context, loanID string, req dto.ApproveLoanRequest, approverID string) (*domain.Loan, error)

	// DisburseLoan moves an approved loan to active, debiting the account
	// and posting the disbursement ledger entry atomically.
	DisburseLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error)

	// MakePayment applies a repayment, crediting the account and posting
	// the repayment ledger entry atomically. A payment clearing the
	// remaining balance moves the loan to repaid.
	MakePayment(ctx context.Context, loanID string, req dto.LoanPaymentRequest, userID string) (*domain.Loan, error)

	// CancelLoan cancels a pending or approved loan.
	CancelLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error)
}

// LoanMaintenanceSvc defines scheduled maintenance operations on loans
type LoanMaintenanceSvc interface {
	// MarkOverdueLoans flags active loans past their due date as overdue.
	// Returns the number of loans transitioned.
	MarkOverdueLoans(ctx context.Context, asOf time.Time) (int, error)

	// MarkDefaulted moves an overdue loan to defaulted.
	MarkDefaulted(ctx context.Context, loanID string, userID string) (*domain.Loan, error)
}

// LoanSvcFacade combines all loan-related service interfaces
// This is a facade for clients that need access to all operations
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
	LoanMaintenanceSvc
}
