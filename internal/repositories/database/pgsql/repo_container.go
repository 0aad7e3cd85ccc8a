package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sharedsaver/shared_saver_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgsql repositories together. The account
// repository is shared so the transaction and loan repositories can lock and
// move balances inside their own database transactions.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo)
	loanRepo := newPgxLoanRepository(dbPool, accountRepo, transactionRepo)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		LoanRepo:        loanRepo,
		TransactionRepo: transactionRepo,
		UserRepo:        userRepo,
	}
}
