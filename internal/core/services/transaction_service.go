package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharedsaver/shared_saver_app/internal/apperrors"
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	portsrepo "github.com/sharedsaver/shared_saver_app/internal/core/ports/repositories"
	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
	"github.com/sharedsaver/shared_saver_app/internal/middleware"
	"github.com/sharedsaver/shared_saver_app/internal/utils/refgen"
)

// referenceRetries bounds how many times a colliding reference number is
// regenerated before giving up.
const referenceRetries = 3

type transactionService struct {
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewTransactionService creates the transaction recorder. Every account
// balance mutation in the system flows through this service (the loan service
// posts its ledger entries through the loan repository's atomic units, which
// share the same storage path).
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) requireMembership(ctx context.Context, accountID string, userID string) (*domain.AccountMembership, error) {
	membership, err := s.accountRepo.FindMembership(ctx, accountID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not a member of account %s", apperrors.ErrForbidden, userID, accountID)
		}
		return nil, err
	}
	return membership, nil
}

// checkRecordingAllowed validates the account state and the member's
// permission for the given entry type.
func (s *transactionService) checkRecordingAllowed(ctx context.Context, accountID string, txnType domain.TransactionType, amount decimal.Decimal, userID string) (*domain.SharedAccount, error) {
	if !txnType.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, txnType)
	}
	if txnType == domain.TxnLoanDisbursement || txnType == domain.TxnLoanRepayment {
		return nil, fmt.Errorf("%w: loan entries are posted by the loan lifecycle, not recorded directly", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrValidation, accountID, account.Status)
	}

	membership, err := s.requireMembership(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if txnType == domain.TxnContribution {
		if !membership.Permissions.CanContribute {
			return nil, fmt.Errorf("%w: user %s cannot contribute to account %s", apperrors.ErrForbidden, userID, accountID)
		}
	} else if !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot record %s entries on account %s", apperrors.ErrForbidden, userID, txnType, accountID)
	}
	return account, nil
}

// saveWithReferenceRetry persists the completed entry, regenerating the
// reference number on a uniqueness collision.
func (s *transactionService) saveWithReferenceRetry(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		saved, err := s.txnRepo.SaveCompletedTransaction(ctx, txn)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return nil, err
		}
		lastErr = err
		txn.ReferenceNumber = refgen.NewTransactionRef()
	}
	return nil, fmt.Errorf("exhausted reference number retries: %w", lastErr)
}

// savePendingWithReferenceRetry persists a pending entry, regenerating the
// reference number on a uniqueness collision.
func (s *transactionService) savePendingWithReferenceRetry(ctx context.Context, txn *domain.Transaction) error {
	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		err := s.txnRepo.SavePendingTransaction(ctx, *txn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		lastErr = err
		txn.ReferenceNumber = refgen.NewTransactionRef()
	}
	return fmt.Errorf("exhausted reference number retries: %w", lastErr)
}

// RecordTransaction applies a ledger entry and its balance mutation as one
// atomic unit. The entry comes back with its balance snapshots filled in.
// When the request asks for a pending entry, the row is recorded with no
// balance effect; CompleteTransaction applies it later.
func (s *transactionService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.checkRecordingAllowed(ctx, req.AccountID, req.TransactionType, req.Amount, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       req.AccountID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		Status:          domain.TxnCompleted,
		InitiatedBy:     userID,
		RecipientID:     req.RecipientID,
		ReferenceNumber: refgen.NewTransactionRef(),
		Notes:           req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if req.Pending {
		txn.Status = domain.TxnPending
		if err := s.savePendingWithReferenceRetry(ctx, &txn); err != nil {
			logger.Error("Failed to record pending transaction", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
			return nil, err
		}
		logger.Info("Pending transaction recorded",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("account_id", txn.AccountID),
			slog.String("type", string(txn.TransactionType)),
			slog.String("reference", txn.ReferenceNumber),
		)
		return &txn, nil
	}

	saved, err := s.saveWithReferenceRetry(ctx, txn)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientCapacity) {
			logger.Error("Failed to record transaction", slog.String("error", err.Error()), slog.String("account_id", req.AccountID))
		}
		return nil, err
	}

	logger.Info("Transaction recorded",
		slog.String("transaction_id", saved.TransactionID),
		slog.String("account_id", saved.AccountID),
		slog.String("type", string(saved.TransactionType)),
		slog.String("reference", saved.ReferenceNumber),
	)
	return saved, nil
}

// Contribute records a contribution by the requesting member, enforcing the
// account's minimum contribution threshold.
func (s *transactionService) Contribute(ctx context.Context, accountID string, req dto.ContributionRequest, userID string) (*domain.Transaction, error) {
	account, err := s.checkRecordingAllowed(ctx, accountID, domain.TxnContribution, req.Amount, userID)
	if err != nil {
		return nil, err
	}
	if req.Amount.LessThan(account.MinContribution) {
		return nil, fmt.Errorf("%w: contribution %s is below the account minimum of %s",
			apperrors.ErrValidation, req.Amount.String(), account.MinContribution.String())
	}

	return s.RecordTransaction(ctx, dto.RecordTransactionRequest{
		AccountID:       accountID,
		TransactionType: domain.TxnContribution,
		Amount:          req.Amount,
		Description:     req.Description,
	}, userID)
}

// Withdraw records a withdrawal by the requesting member. The non-negative
// balance invariant is enforced by the storage unit under the account lock.
func (s *transactionService) Withdraw(ctx context.Context, accountID string, req dto.WithdrawalRequest, userID string) (*domain.Transaction, error) {
	return s.RecordTransaction(ctx, dto.RecordTransactionRequest{
		AccountID:       accountID,
		TransactionType: domain.TxnWithdrawal,
		Amount:          req.Amount,
		Description:     req.Description,
	}, userID)
}

// CompleteTransaction settles a pending entry, applying its balance effect
// exactly once.
func (s *transactionService) CompleteTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	membership, err := s.requireMembership(ctx, txn.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot complete transactions on account %s", apperrors.ErrForbidden, userID, txn.AccountID)
	}

	completed, err := s.txnRepo.CompleteTransaction(ctx, transactionID, userID, time.Now())
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrInsufficientCapacity) {
			logger.Error("Failed to complete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	logger.Info("Transaction completed", slog.String("transaction_id", transactionID))
	return completed, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMembership(ctx, txn.AccountID, userID); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.requireMembership(ctx, accountID, userID); err != nil {
		return nil, err
	}

	txns, nextToken, err := s.txnRepo.ListTransactionsByAccount(ctx, accountID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
