package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/apperrors"
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	portsrepo "github.com/sharedsaver/shared_saver_app/internal/core/ports/repositories"
	"github.com/sharedsaver/shared_saver_app/internal/models"
	"github.com/sharedsaver/shared_saver_app/internal/utils/mapping"
)

const loanColumns = `loan_id, account_id, borrower_id, amount, purpose, status, term_months, monthly_payment, requested_at, approved_at, disbursed_at, due_date, repaid_at, amount_paid, remaining_balance, approved_by, approval_notes, reference_number, notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxLoanRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	txnSupport  portsrepo.TransactionTxSupport
}

// newPgxLoanRepository creates a new repository for loan data. The account
// repository supplies the in-tx lock and balance helpers; the transaction
// support inserts the paired ledger entries inside the same tx.
func newPgxLoanRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, txnSupport portsrepo.TransactionTxSupport) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		txnSupport:     txnSupport,
	}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryFacade
var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

func scanLoan(row pgx.Row) (*models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID,
		&m.AccountID,
		&m.BorrowerID,
		&m.Amount,
		&m.Purpose,
		&m.Status,
		&m.TermMonths,
		&m.MonthlyPayment,
		&m.RequestedAt,
		&m.ApprovedAt,
		&m.DisbursedAt,
		&m.DueDate,
		&m.RepaidAt,
		&m.AmountPaid,
		&m.RemainingBalance,
		&m.ApprovedBy,
		&m.ApprovalNotes,
		&m.ReferenceNumber,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveLoan inserts a new loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)

	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LoanID,
		m.AccountID,
		m.BorrowerID,
		m.Amount,
		m.Purpose,
		m.Status,
		m.TermMonths,
		m.MonthlyPayment,
		m.RequestedAt,
		m.ApprovedAt,
		m.DisbursedAt,
		m.DueDate,
		m.RepaidAt,
		m.AmountPaid,
		m.RemainingBalance,
		m.ApprovedBy,
		m.ApprovalNotes,
		m.ReferenceNumber,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation on reference_number
			return fmt.Errorf("%w: loan reference %s already exists", apperrors.ErrDuplicate, m.ReferenceNumber)
		}
		return fmt.Errorf("failed to save loan %s: %w", m.LoanID, err)
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE loan_id = $1;
	`
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by ID %s: %w", loanID, err)
	}
	loan := mapping.ToDomainLoan(*m)
	return &loan, nil
}

func (r *PgxLoanRepository) listLoans(ctx context.Context, query string, args ...interface{}) ([]domain.Loan, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	modelLoans := []models.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		modelLoans = append(modelLoans, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}
	return mapping.ToDomainLoanSlice(modelLoans), nil
}

// ListLoansByAccount retrieves loans for an account, optionally filtered by status.
func (r *PgxLoanRepository) ListLoansByAccount(ctx context.Context, accountID string, status *domain.LoanStatus) ([]domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE account_id = $1
	`
	args := []interface{}{accountID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY requested_at DESC;`
	return r.listLoans(ctx, query, args...)
}

// ListLoansByBorrower retrieves loans for a borrower, optionally filtered by status.
func (r *PgxLoanRepository) ListLoansByBorrower(ctx context.Context, borrowerID string, status *domain.LoanStatus) ([]domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE borrower_id = $1
	`
	args := []interface{}{borrowerID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY requested_at DESC;`
	return r.listLoans(ctx, query, args...)
}

// ListLoansPastDue retrieves active loans whose due date is before asOf.
func (r *PgxLoanRepository) ListLoansPastDue(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = 'active' AND due_date IS NOT NULL AND due_date < $1
		ORDER BY due_date;
	`
	return r.listLoans(ctx, query, asOf)
}

// SumActiveLoanAmountByAccount sums the principal of the account's active loans.
func (r *PgxLoanRepository) SumActiveLoanAmountByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, sumActiveLoansQuery, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum active loans for account %s: %w", accountID, err)
	}
	return sum, nil
}

const sumActiveLoansQuery = `
	SELECT COALESCE(SUM(amount), 0)
	FROM loans
	WHERE account_id = $1 AND status = 'active';
`

// UpdateLoanApproval records approval fields, guarded on the pending status.
func (r *PgxLoanRepository) UpdateLoanApproval(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)

	query := `
		UPDATE loans
		SET status = 'approved', approved_at = $2, approved_by = $3, approval_notes = $4, last_updated_at = $5, last_updated_by = $6
		WHERE loan_id = $1 AND status = 'pending';
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.LoanID,
		m.ApprovedAt,
		m.ApprovedBy,
		m.ApprovalNotes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to approve loan %s: %w", m.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s is not pending", apperrors.ErrConflict, m.LoanID)
	}
	return nil
}

// UpdateLoanStatus moves a loan between statuses with a guard on the expected
// current status. Zero rows means a concurrent actor got there first.
func (r *PgxLoanRepository) UpdateLoanStatus(ctx context.Context, loanID string, from, to domain.LoanStatus, userID string, now time.Time) error {
	query := `
		UPDATE loans
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE loan_id = $1 AND status = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loanID, string(from), string(to), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s is no longer %s", apperrors.ErrConflict, loanID, from)
	}
	return nil
}

// DisburseLoan flips an approved loan to active, debits the account balance
// and records the loan_disbursement ledger entry, all in one database
// transaction. Borrowing capacity is re-checked under the account row lock;
// the pre-check in the service layer is advisory only.
func (r *PgxLoanRepository) DisburseLoan(ctx context.Context, loan domain.Loan, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	account, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, loan.AccountID)
	if err != nil {
		return nil, err
	}

	var activeSum decimal.Decimal
	if err := tx.QueryRow(ctx, sumActiveLoansQuery, loan.AccountID).Scan(&activeSum); err != nil {
		return nil, fmt.Errorf("failed to sum active loans for account %s: %w", loan.AccountID, err)
	}
	available := account.Balance.Sub(activeSum)
	if !account.CanBorrow(loan.Amount, available) {
		return nil, fmt.Errorf("%w: account %s cannot fund loan of %s (available %s)",
			apperrors.ErrInsufficientCapacity, loan.AccountID, loan.Amount.String(), available.String())
	}

	m := mapping.ToModelLoan(loan)
	loanQuery := `
		UPDATE loans
		SET status = 'active', disbursed_at = $2, due_date = $3, last_updated_at = $4, last_updated_by = $5
		WHERE loan_id = $1 AND status = 'approved';
	`
	cmdTag, err := tx.Exec(ctx, loanQuery,
		m.LoanID,
		m.DisbursedAt,
		m.DueDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to activate loan %s: %w", m.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: loan %s is not approved", apperrors.ErrConflict, m.LoanID)
	}

	before, after, err := r.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, loan.AccountID, txn.Amount.Neg(), txn.InitiatedBy, txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	txn.Status = domain.TxnCompleted
	txn.BalanceBefore = before
	txn.BalanceAfter = after
	if txn.ProcessedAt == nil {
		processedAt := txn.CreatedAt
		txn.ProcessedAt = &processedAt
	}
	if err := r.txnSupport.InsertTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

// ApplyLoanPayment updates the loan's repayment figures, credits the account
// balance and records the loan_repayment ledger entry, all in one database
// transaction. The guard on prevStatus keeps a retried payment from posting twice.
func (r *PgxLoanRepository) ApplyLoanPayment(ctx context.Context, loan domain.Loan, prevStatus domain.LoanStatus, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, loan.AccountID); err != nil {
		return nil, err
	}

	m := mapping.ToModelLoan(loan)
	loanQuery := `
		UPDATE loans
		SET status = $3, amount_paid = $4, remaining_balance = $5, repaid_at = $6, last_updated_at = $7, last_updated_by = $8
		WHERE loan_id = $1 AND status = $2 AND amount_paid = $9;
	`
	cmdTag, err := tx.Exec(ctx, loanQuery,
		m.LoanID,
		string(prevStatus),
		m.Status,
		m.AmountPaid,
		m.RemainingBalance,
		m.RepaidAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		loan.AmountPaid.Sub(txn.Amount),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to apply payment to loan %s: %w", m.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: loan %s changed concurrently", apperrors.ErrConflict, m.LoanID)
	}

	before, after, err := r.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, loan.AccountID, txn.Amount, txn.InitiatedBy, txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	txn.Status = domain.TxnCompleted
	txn.BalanceBefore = before
	txn.BalanceAfter = after
	if txn.ProcessedAt == nil {
		processedAt := txn.CreatedAt
		txn.ProcessedAt = &processedAt
	}
	if err := r.txnSupport.InsertTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}
