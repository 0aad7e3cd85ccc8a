package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// LoanReader defines read operations for loan data
type LoanReader interface {
	// FindLoanByID retrieves a loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoansByAccount retrieves loans for an account, optionally filtered by status.
	ListLoansByAccount(ctx context.Context, accountID string, status *domain.LoanStatus) ([]domain.Loan, error)

	// ListLoansByBorrower retrieves loans for a borrower, optionally filtered by status.
	ListLoansByBorrower(ctx context.Context, borrowerID string, status *domain.LoanStatus) ([]domain.Loan, error)

	// ListLoansPastDue retrieves active loans whose due date is before asOf.
	ListLoansPastDue(ctx context.Context, asOf time.Time) ([]domain.Loan, error)

	// SumActiveLoanAmountByAccount sums the principal of active loans against an account.
	SumActiveLoanAmountByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// LoanWriter defines write operations for loan data
type LoanWriter interface {
	// SaveLoan persists a new loan. A reference_number collision surfaces as ErrDuplicate.
	SaveLoan(ctx context.Context, loan domain.Loan) error

	// UpdateLoanApproval records approval fields; guarded on the pending status,
	// zero rows surfaces as ErrConflict.
	UpdateLoanApproval(ctx context.Context, loan domain.Loan) error

	// UpdateLoanStatus moves a loan between statuses with a guard on the expected
	// current status; a concurrent change surfaces as ErrConflict.
	UpdateLoanStatus(ctx context.Context, loanID string, from, to domain.LoanStatus, userID string, now time.Time) error
}

// LoanLedgerSupport defines the atomic loan/ledger units. Each call executes in
// one database transaction: lock the account row, verify invariants, update the
// loan row (guarded on its prior status), move the balance and insert the
// completed transaction record. Either everything applies or nothing does.
type LoanLedgerSupport interface {
	// DisburseLoan applies a disbursement: re-checks borrowing capacity under the
	// account lock (ErrInsufficientCapacity on failure), flips the loan from
	// approved to active with its dates, debits the balance and records the
	// loan_disbursement transaction. Returns the transaction with its
	// balance_before/balance_after snapshots filled in.
	DisburseLoan(ctx context.Context, loan domain.Loan, txn domain.Transaction) (*domain.Transaction, error)

	// ApplyLoanPayment applies a repayment: updates the loan's paid/remaining
	// figures (guarded on prevStatus), credits the balance and records the
	// loan_repayment transaction.
	ApplyLoanPayment(ctx context.Context, loan domain.Loan, prevStatus domain.LoanStatus, txn domain.Transaction) (*domain.Transaction, error)
}

// LoanRepositoryFacade combines all loan-related repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	LoanLedgerSupport
}
