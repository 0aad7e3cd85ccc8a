package services

import (
	"context"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
)

// TransactionReaderSvc defines read operations for ledger data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific ledger entry.
	GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves a page of ledger entries for an account.
	ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for ledger data.
// This is the only path through which account balances change.
type TransactionWriterSvc interface {
	// RecordTransaction applies a ledger entry and its balance mutation atomically.
	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, userID string) (*domain.Transaction, error)

	// Contribute records a contribution by the requesting member.
	Contribute(ctx context.Context, accountID string, req dto.ContributionRequest, userID string) (*domain.Transaction, error)

	// Withdraw records a withdrawal by the requesting member.
	Withdraw(ctx context.Context, accountID string, req dto.WithdrawalRequest, userID string) (*domain.Transaction, error)

	// CompleteTransaction settles a pending entry, applying its balance effect.
	CompleteTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
// This is a facade for clients that need access to all operations
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
