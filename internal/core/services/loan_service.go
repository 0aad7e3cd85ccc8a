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

type loanService struct {
	loanRepo    portsrepo.LoanRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	userRepo    portsrepo.UserReader
	accountSvc  portssvc.AccountCalculatorSvc
}

// NewLoanService creates the loan lifecycle service.
func NewLoanService(loanRepo portsrepo.LoanRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, userRepo portsrepo.UserReader, accountSvc portssvc.AccountCalculatorSvc) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		accountSvc:  accountSvc,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

func (s *loanService) requireMembership(ctx context.Context, accountID string, userID string) (*domain.AccountMembership, error) {
	membership, err := s.accountRepo.FindMembership(ctx, accountID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not a member of account %s", apperrors.ErrForbidden, userID, accountID)
		}
		return nil, err
	}
	return membership, nil
}

// RequestLoan creates a pending loan request. Capacity is pre-checked here as
// a fast rejection; the binding check happens under the account row lock at
// disbursement.
func (s *loanService) RequestLoan(ctx context.Context, req dto.RequestLoanRequest, borrowerID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: loan amount must be positive", apperrors.ErrValidation)
	}
	if req.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be at least one month", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrValidation, req.AccountID, account.Status)
	}
	if !account.AllowLoans {
		return nil, fmt.Errorf("%w: account %s does not allow loans", apperrors.ErrValidation, req.AccountID)
	}

	membership, err := s.requireMembership(ctx, req.AccountID, borrowerID)
	if err != nil {
		return nil, err
	}
	if !membership.Permissions.CanBorrow {
		return nil, fmt.Errorf("%w: user %s cannot borrow from account %s", apperrors.ErrForbidden, borrowerID, req.AccountID)
	}

	ok, err := s.accountSvc.CanBorrow(ctx, req.AccountID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: account %s cannot fund a loan of %s", apperrors.ErrInsufficientCapacity, req.AccountID, req.Amount.String())
	}

	now := time.Now()
	loan := domain.Loan{
		LoanID:           uuid.NewString(),
		AccountID:        req.AccountID,
		BorrowerID:       borrowerID,
		Amount:           req.Amount,
		Purpose:          req.Purpose,
		Status:           domain.LoanPending,
		TermMonths:       req.TermMonths,
		MonthlyPayment:   domain.MonthlyPaymentFor(req.Amount, req.TermMonths),
		RequestedAt:      now,
		AmountPaid:       decimal.Zero,
		RemainingBalance: req.Amount,
		ReferenceNumber:  refgen.NewLoanRef(),
		Notes:            req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     borrowerID,
			LastUpdatedAt: now,
			LastUpdatedBy: borrowerID,
		},
	}

	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		err := s.loanRepo.SaveLoan(ctx, loan)
		if err == nil {
			logger.Info("Loan requested",
				slog.String("loan_id", loan.LoanID),
				slog.String("account_id", loan.AccountID),
				slog.String("reference", loan.ReferenceNumber),
			)
			return &loan, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save loan", slog.String("error", err.Error()), slog.String("loan_id", loan.LoanID))
			return nil, err
		}
		lastErr = err
		loan.ReferenceNumber = refgen.NewLoanRef()
	}
	return nil, fmt.Errorf("exhausted reference number retries: %w", lastErr)
}

// ApproveLoan moves a pending loan to approved. The borrower cannot approve
// their own request.
func (s *loanService) ApproveLoan(ctx context.Context, loanID string, req dto.ApproveLoanRequest, approverID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	membership, err := s.requireMembership(ctx, loan.AccountID, approverID)
	if err != nil {
		return nil, err
	}
	if !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot approve loans on account %s", apperrors.ErrForbidden, approverID, loan.AccountID)
	}
	if loan.BorrowerID == approverID {
		return nil, fmt.Errorf("%w: borrowers cannot approve their own loans", apperrors.ErrForbidden)
	}
	if !loan.Status.CanTransition(domain.LoanApproved) {
		return nil, fmt.Errorf("%w: loan %s is %s, cannot approve", apperrors.ErrInvalidTransition, loanID, loan.Status)
	}

	now := time.Now()
	loan.Status = domain.LoanApproved
	loan.ApprovedAt = &now
	loan.ApprovedBy = &approverID
	loan.ApprovalNotes = req.Notes
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = approverID

	if err := s.loanRepo.UpdateLoanApproval(ctx, *loan); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to approve loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		}
		return nil, err
	}

	logger.Info("Loan approved", slog.String("loan_id", loanID), slog.String("approver_id", approverID))
	return loan, nil
}

// DisburseLoan moves an approved loan to active. The loan flip, the balance
// debit and the loan_disbursement ledger entry happen in one storage unit.
func (s *loanService) DisburseLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	membership, err := s.requireMembership(ctx, loan.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot disburse loans on account %s", apperrors.ErrForbidden, userID, loan.AccountID)
	}
	if !loan.Status.CanTransition(domain.LoanActive) {
		return nil, fmt.Errorf("%w: loan %s is %s, cannot disburse", apperrors.ErrInvalidTransition, loanID, loan.Status)
	}

	now := time.Now()
	dueDate := domain.DueDateFrom(now, loan.TermMonths)
	loan.Status = domain.LoanActive
	loan.DisbursedAt = &now
	loan.DueDate = &dueDate
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       loan.AccountID,
		TransactionType: domain.TxnLoanDisbursement,
		Amount:          loan.Amount,
		Description:     fmt.Sprintf("Loan disbursement %s", loan.ReferenceNumber),
		Status:          domain.TxnCompleted,
		InitiatedBy:     userID,
		RecipientID:     &loan.BorrowerID,
		RelatedLoan:     &loan.LoanID,
		ReferenceNumber: refgen.NewTransactionRef(),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		saved, err := s.loanRepo.DisburseLoan(ctx, *loan, txn)
		if err == nil {
			logger.Info("Loan disbursed",
				slog.String("loan_id", loanID),
				slog.String("transaction_id", saved.TransactionID),
				slog.String("balance_after", saved.BalanceAfter.String()),
			)
			return loan, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			if !errors.Is(err, apperrors.ErrInsufficientCapacity) && !errors.Is(err, apperrors.ErrConflict) {
				logger.Error("Failed to disburse loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
			}
			return nil, err
		}
		lastErr = err
		txn.ReferenceNumber = refgen.NewTransactionRef()
	}
	return nil, fmt.Errorf("exhausted reference number retries: %w", lastErr)
}

// MakePayment applies a repayment to an active or overdue loan. The loan
// update, the balance credit and the loan_repayment ledger entry happen in one
// storage unit. A payment clearing the remaining balance settles the loan.
func (s *loanService) MakePayment(ctx context.Context, loanID string, req dto.LoanPaymentRequest, userID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMembership(ctx, loan.AccountID, userID); err != nil {
		return nil, err
	}
	if !loan.Status.AcceptsPayment() {
		return nil, fmt.Errorf("%w: loan %s is %s, cannot accept payments", apperrors.ErrInvalidTransition, loanID, loan.Status)
	}
	if req.Amount.GreaterThan(loan.RemainingBalance) {
		return nil, fmt.Errorf("%w: payment %s exceeds remaining balance %s",
			apperrors.ErrInsufficientCapacity, req.Amount.String(), loan.RemainingBalance.String())
	}

	now := time.Now()
	paymentTime := now
	if req.PaymentDate != nil {
		paymentTime = *req.PaymentDate
	}

	prevStatus := loan.Status
	loan.AmountPaid = loan.AmountPaid.Add(req.Amount)
	loan.RemainingBalance = loan.RemainingBalance.Sub(req.Amount)
	if !loan.RemainingBalance.IsPositive() {
		loan.Status = domain.LoanRepaid
		loan.RepaidAt = &paymentTime
	}
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       loan.AccountID,
		TransactionType: domain.TxnLoanRepayment,
		Amount:          req.Amount,
		Description:     fmt.Sprintf("Loan repayment %s", loan.ReferenceNumber),
		Status:          domain.TxnCompleted,
		InitiatedBy:     userID,
		RelatedLoan:     &loan.LoanID,
		ReferenceNumber: refgen.NewTransactionRef(),
		ProcessedAt:     &paymentTime,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		saved, err := s.loanRepo.ApplyLoanPayment(ctx, *loan, prevStatus, txn)
		if err == nil {
			logger.Info("Loan payment applied",
				slog.String("loan_id", loanID),
				slog.String("transaction_id", saved.TransactionID),
				slog.String("remaining_balance", loan.RemainingBalance.String()),
				slog.String("status", string(loan.Status)),
			)
			return loan, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			if !errors.Is(err, apperrors.ErrConflict) {
				logger.Error("Failed to apply loan payment", slog.String("error", err.Error()), slog.String("loan_id", loanID))
			}
			return nil, err
		}
		lastErr = err
		txn.ReferenceNumber = refgen.NewTransactionRef()
	}
	return nil, fmt.Errorf("exhausted reference number retries: %w", lastErr)
}

// CancelLoan cancels a pending or approved loan. Once funds have moved the
// loan can no longer be cancelled.
func (s *loanService) CancelLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	membership, err := s.requireMembership(ctx, loan.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if loan.BorrowerID != userID && !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot cancel loan %s", apperrors.ErrForbidden, userID, loanID)
	}
	if !loan.Status.CanTransition(domain.LoanCancelled) {
		return nil, fmt.Errorf("%w: loan %s is %s, cannot cancel", apperrors.ErrInvalidTransition, loanID, loan.Status)
	}

	now := time.Now()
	if err := s.loanRepo.UpdateLoanStatus(ctx, loanID, loan.Status, domain.LoanCancelled, userID, now); err != nil {
		return nil, err
	}

	loan.Status = domain.LoanCancelled
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID
	logger.Info("Loan cancelled", slog.String("loan_id", loanID))
	return loan, nil
}

// MarkOverdueLoans flags active loans past their due date as overdue. Loans
// that transition concurrently are skipped, not failed.
func (s *loanService) MarkOverdueLoans(ctx context.Context, asOf time.Time) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	pastDue, err := s.loanRepo.ListLoansPastDue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, loan := range pastDue {
		err := s.loanRepo.UpdateLoanStatus(ctx, loan.LoanID, domain.LoanActive, domain.LoanOverdue, loan.BorrowerID, asOf)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return marked, err
		}
		marked++
	}

	if marked > 0 {
		logger.Info("Marked overdue loans", slog.Int("count", marked))
	}
	return marked, nil
}

// MarkDefaulted moves an overdue loan to defaulted.
func (s *loanService) MarkDefaulted(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	membership, err := s.requireMembership(ctx, loan.AccountID, userID)
	if err != nil {
		return nil, err
	}
	if !membership.Permissions.CanManage {
		return nil, fmt.Errorf("%w: user %s cannot default loans on account %s", apperrors.ErrForbidden, userID, loan.AccountID)
	}
	if !loan.Status.CanTransition(domain.LoanDefaulted) {
		return nil, fmt.Errorf("%w: loan %s is %s, cannot default", apperrors.ErrInvalidTransition, loanID, loan.Status)
	}

	now := time.Now()
	if err := s.loanRepo.UpdateLoanStatus(ctx, loanID, loan.Status, domain.LoanDefaulted, userID, now); err != nil {
		return nil, err
	}

	loan.Status = domain.LoanDefaulted
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = userID
	logger.Warn("Loan defaulted", slog.String("loan_id", loanID))
	return loan, nil
}

func (s *loanService) GetLoanByID(ctx context.Context, loanID string, userID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMembership(ctx, loan.AccountID, userID); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) ListLoansByAccount(ctx context.Context, accountID string, userID string, status *domain.LoanStatus) ([]domain.Loan, error) {
	if _, err := s.requireMembership(ctx, accountID, userID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListLoansByAccount(ctx, accountID, status)
}

func (s *loanService) ListLoansByBorrower(ctx context.Context, borrowerID string, userID string) ([]domain.Loan, error) {
	if borrowerID != userID {
		return nil, fmt.Errorf("%w: users may only list their own loans", apperrors.ErrForbidden)
	}
	return s.loanRepo.ListLoansByBorrower(ctx, borrowerID, nil)
}

// GetLoanSummary builds the display projection of a loan, resolving the
// borrower's display name.
func (s *loanService) GetLoanSummary(ctx context.Context, loanID string, userID string) (*dto.LoanSummaryResponse, error) {
	loan, err := s.GetLoanByID(ctx, loanID, userID)
	if err != nil {
		return nil, err
	}

	borrowerName := loan.BorrowerID
	borrower, err := s.userRepo.FindUserByID(ctx, loan.BorrowerID)
	if err == nil {
		borrowerName = borrower.FullName()
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return &dto.LoanSummaryResponse{
		LoanID:           loan.LoanID,
		ReferenceNumber:  loan.ReferenceNumber,
		Amount:           loan.Amount,
		Purpose:          loan.Purpose,
		Status:           string(loan.Status),
		BorrowerName:     borrowerName,
		TermMonths:       loan.TermMonths,
		MonthlyPayment:   loan.MonthlyPayment,
		AmountPaid:       loan.AmountPaid,
		RemainingBalance: loan.RemainingBalance,
		DueDate:          loan.DueDate,
		CreatedAt:        loan.CreatedAt,
	}, nil
}
