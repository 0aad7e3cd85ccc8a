package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines the ability to control database transactions.
// The serialization unit for balance work is always a single account row,
// locked inside one of these transactions.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryProvider bundles the repository facades handed to the service layer.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	LoanRepo        LoanRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	UserRepo        UserRepositoryFacade
}
