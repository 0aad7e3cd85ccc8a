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
	"github.com/sharedsaver/shared_saver_app/internal/utils/pagination"
)

const transactionColumns = `transaction_id, account_id, transaction_type, amount, description, status, initiated_by, recipient_id, related_loan_id, balance_before, balance_after, reference_number, notes, processed_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for ledger entries. The
// account repository is injected for the in-tx lock and balance helpers.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.TransactionType,
		&m.Amount,
		&m.Description,
		&m.Status,
		&m.InitiatedBy,
		&m.RecipientID,
		&m.RelatedLoanID,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.ReferenceNumber,
		&m.Notes,
		&m.ProcessedAt,
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

// InsertTransactionInTx inserts a transaction row within an open database
// transaction. Also used by the loan repository when posting its ledger entries.
func (r *PgxTransactionRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.AccountID,
		m.TransactionType,
		m.Amount,
		m.Description,
		m.Status,
		m.InitiatedBy,
		m.RecipientID,
		m.RelatedLoanID,
		m.BalanceBefore,
		m.BalanceAfter,
		m.ReferenceNumber,
		m.Notes,
		m.ProcessedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation on reference_number
			return fmt.Errorf("%w: transaction reference %s already exists", apperrors.ErrDuplicate, m.ReferenceNumber)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// SaveCompletedTransaction records a completed ledger entry and applies its
// balance effect in one database transaction: the account row is locked,
// balance_before captured, the signed delta applied, and the row inserted with
// balance_after. Either both happen or neither does.
func (r *PgxTransactionRepository) SaveCompletedTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	delta := txn.TransactionType.SignedAmount(txn.Amount)
	before, after, err := r.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, txn.AccountID, delta, txn.InitiatedBy, txn.CreatedAt)
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

	if err := r.InsertTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

// SavePendingTransaction records a pending ledger entry with no balance effect.
func (r *PgxTransactionRepository) SavePendingTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	txn.Status = domain.TxnPending
	if err := r.InsertTransactionInTx(ctx, tx, txn); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// CompleteTransaction settles a pending entry: under the account row lock the
// balance effect is applied and the row flipped to completed with its snapshots.
// The status guard makes retries safe; a second attempt finds no pending row
// and reports ErrConflict without touching the balance again.
func (r *PgxTransactionRepository) CompleteTransaction(ctx context.Context, transactionID string, userID string, now time.Time) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	selectQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1
		FOR UPDATE;
	`
	m, err := scanTransaction(tx.QueryRow(ctx, selectQuery, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(*m)
	if txn.Status != domain.TxnPending {
		return nil, fmt.Errorf("%w: transaction %s is %s, not pending", apperrors.ErrConflict, transactionID, txn.Status)
	}

	delta := txn.TransactionType.SignedAmount(txn.Amount)
	before, after, err := r.accountRepo.ApplyBalanceDeltaInTx(ctx, tx, txn.AccountID, delta, userID, now)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE transactions
		SET status = $2, balance_before = $3, balance_after = $4, processed_at = $5, last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1 AND status = 'pending';
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, transactionID, string(domain.TxnCompleted), before, after, now, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: transaction %s changed concurrently", apperrors.ErrConflict, transactionID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	txn.Status = domain.TxnCompleted
	txn.BalanceBefore = before
	txn.BalanceAfter = after
	txn.ProcessedAt = &now
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID
	return &txn, nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1;
	`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(*m)
	return &txn, nil
}

// ListTransactionsByAccount retrieves a page of transactions for an account,
// newest first, keyed by an opaque (created_at, id) cursor token.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	args := []interface{}{accountID}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
	`
	if nextToken != nil && *nextToken != "" {
		cursorTime, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, cursorTime, cursorID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1) // Fetch one extra to detect another page

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelTxns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		modelTxns = append(modelTxns, *m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, rows.Err())
	}

	var token *string
	if len(modelTxns) > limit {
		modelTxns = modelTxns[:limit]
		last := modelTxns[limit-1]
		t := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		token = &t
	}
	return mapping.ToDomainTransactionSlice(modelTxns), token, nil
}

// SumCompletedByType sums completed transaction amounts of one type for an account.
func (r *PgxTransactionRepository) SumCompletedByType(ctx context.Context, accountID string, txnType domain.TransactionType) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND transaction_type = $2 AND status = 'completed';
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, string(txnType)).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions for account %s: %w", txnType, accountID, err)
	}
	return sum, nil
}
