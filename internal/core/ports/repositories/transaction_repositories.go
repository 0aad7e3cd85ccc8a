package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

// TransactionReader defines read operations for ledger entries
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves a page of transactions for an account
	// ordered by creation time descending, with an opaque cursor token.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumCompletedByType sums completed transaction amounts of one type for an account.
	SumCompletedByType(ctx context.Context, accountID string, txnType domain.TransactionType) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for ledger entries
type TransactionWriter interface {
	// SaveCompletedTransaction records a completed transaction and applies its
	// balance effect in one database transaction: the account row is locked,
	// balance_before captured, the signed delta applied (ErrInsufficientCapacity
	// if the balance would go negative) and the row inserted with balance_after.
	// A reference_number collision surfaces as ErrDuplicate.
	SaveCompletedTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)

	// SavePendingTransaction records a pending transaction with no balance effect.
	SavePendingTransaction(ctx context.Context, txn domain.Transaction) error

	// CompleteTransaction flips a pending transaction to completed and applies
	// its balance effect exactly once, in the same database transaction. A
	// transaction that is no longer pending surfaces as ErrConflict.
	CompleteTransaction(ctx context.Context, transactionID string, userID string, now time.Time) (*domain.Transaction, error)
}

// TransactionTxSupport exposes the insert used by sibling repositories that
// record ledger entries inside their own atomic units.
type TransactionTxSupport interface {
	// InsertTransactionInTx inserts a transaction row within an open transaction.
	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionTxSupport
}
