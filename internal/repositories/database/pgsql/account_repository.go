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

const accountColumns = `account_id, name, description, account_type, status, balance, target_amount, created_by_user_id, allow_loans, max_loan_amount, min_contribution, created_at, created_by, last_updated_at, last_updated_by`

const membershipColumns = `account_id, user_id, role, can_contribute, can_borrow, can_invite, can_manage, joined_at, updated_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for shared account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*models.SharedAccount, error) {
	var m models.SharedAccount
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.Description,
		&m.AccountType,
		&m.Status,
		&m.Balance,
		&m.TargetAmount,
		&m.CreatedByUserID,
		&m.AllowLoans,
		&m.MaxLoanAmount,
		&m.MinContribution,
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

// SaveAccount inserts a new shared account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.SharedAccount) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO shared_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Description,
		m.AccountType,
		m.Status,
		m.Balance,
		m.TargetAmount,
		m.CreatedByUserID,
		m.AllowLoans,
		m.MaxLoanAmount,
		m.MinContribution,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.SharedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM shared_accounts
		WHERE account_id = $1;
	`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// ListAccountsByUserID retrieves the accounts a user holds a membership in.
func (r *PgxAccountRepository) ListAccountsByUserID(ctx context.Context, userID string) ([]domain.SharedAccount, error) {
	query := `
		SELECT a.account_id, a.name, a.description, a.account_type, a.status, a.balance, a.target_amount, a.created_by_user_id, a.allow_loans, a.max_loan_amount, a.min_contribution, a.created_at, a.created_by, a.last_updated_at, a.last_updated_by
		FROM shared_accounts a
		JOIN account_memberships am ON am.account_id = a.account_id
		WHERE am.user_id = $1
		ORDER BY a.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	accounts := []domain.SharedAccount{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for user %s: %w", userID, err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(*m))
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating account rows for user %s: %w", userID, rows.Err())
	}
	return accounts, nil
}

// UpdateAccount updates an existing account's details and loan settings.
// Balance and status are deliberately excluded; they move through
// ApplyBalanceDeltaInTx and UpdateAccountStatus respectively.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.SharedAccount) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE shared_accounts
		SET name = $2, description = $3, target_amount = $4, allow_loans = $5, max_loan_amount = $6, min_contribution = $7, last_updated_at = $8, last_updated_by = $9
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Description,
		m.TargetAmount,
		m.AllowLoans,
		m.MaxLoanAmount,
		m.MinContribution,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateAccountStatus moves an account between active/inactive/suspended.
func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, userID string, now time.Time) error {
	query := `
		UPDATE shared_accounts
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountByIDForUpdate selects the account row FOR UPDATE within tx,
// blocking concurrent balance work on the same account until tx ends.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.SharedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM shared_accounts
		WHERE account_id = $1
		FOR UPDATE;
	`
	m, err := scanAccount(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(*m)
	return &acc, nil
}

// ApplyBalanceDeltaInTx applies a signed delta to the locked account balance.
// The caller must hold the row lock via FindAccountByIDForUpdate in the same tx.
func (r *PgxAccountRepository) ApplyBalanceDeltaInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var before decimal.Decimal
	selectQuery := `SELECT balance FROM shared_accounts WHERE account_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, selectQuery, accountID).Scan(&before); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to read balance of account %s: %w", accountID, err)
	}

	after := before.Add(delta)
	if after.IsNegative() {
		return before, before, fmt.Errorf("%w: balance %s cannot absorb %s", apperrors.ErrInsufficientCapacity, before.String(), delta.String())
	}

	updateQuery := `
		UPDATE shared_accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, accountID, after, now, userID); err != nil {
		return before, before, fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}
	return before, after, nil
}

// SaveMembership inserts a membership row.
func (r *PgxAccountRepository) SaveMembership(ctx context.Context, membership domain.AccountMembership) error {
	m := mapping.ToModelMembership(membership)

	query := `
		INSERT INTO account_memberships (` + membershipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.UserID,
		m.Role,
		m.CanContribute,
		m.CanBorrow,
		m.CanInvite,
		m.CanManage,
		m.JoinedAt,
		m.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation on (account_id, user_id)
			return fmt.Errorf("%w: user %s is already a member of account %s", apperrors.ErrDuplicate, m.UserID, m.AccountID)
		}
		return fmt.Errorf("failed to save membership for user %s in account %s: %w", m.UserID, m.AccountID, err)
	}
	return nil
}

// FindMembership retrieves the membership for the (account, user) pair.
func (r *PgxAccountRepository) FindMembership(ctx context.Context, accountID string, userID string) (*domain.AccountMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM account_memberships
		WHERE account_id = $1 AND user_id = $2;
	`
	var m models.AccountMembership
	err := r.Pool.QueryRow(ctx, query, accountID, userID).Scan(
		&m.AccountID,
		&m.UserID,
		&m.Role,
		&m.CanContribute,
		&m.CanBorrow,
		&m.CanInvite,
		&m.CanManage,
		&m.JoinedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership for user %s in account %s: %w", userID, accountID, err)
	}
	membership := mapping.ToDomainMembership(m)
	return &membership, nil
}

// ListMembershipsByAccount retrieves all memberships of an account.
func (r *PgxAccountRepository) ListMembershipsByAccount(ctx context.Context, accountID string) ([]domain.AccountMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM account_memberships
		WHERE account_id = $1
		ORDER BY joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelMemberships := []models.AccountMembership{}
	for rows.Next() {
		var m models.AccountMembership
		err := rows.Scan(
			&m.AccountID,
			&m.UserID,
			&m.Role,
			&m.CanContribute,
			&m.CanBorrow,
			&m.CanInvite,
			&m.CanManage,
			&m.JoinedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership row for account %s: %w", accountID, err)
		}
		modelMemberships = append(modelMemberships, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating membership rows for account %s: %w", accountID, rows.Err())
	}
	return mapping.ToDomainMembershipSlice(modelMemberships), nil
}

// UpdateMembershipRole changes the role and its derived permission flags.
func (r *PgxAccountRepository) UpdateMembershipRole(ctx context.Context, membership domain.AccountMembership) error {
	m := mapping.ToModelMembership(membership)

	query := `
		UPDATE account_memberships
		SET role = $3, can_contribute = $4, can_borrow = $5, can_invite = $6, can_manage = $7, updated_at = $8
		WHERE account_id = $1 AND user_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.UserID,
		m.Role,
		m.CanContribute,
		m.CanBorrow,
		m.CanInvite,
		m.CanManage,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership role for user %s in account %s: %w", m.UserID, m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteMembership removes the membership; reports whether a row was removed.
func (r *PgxAccountRepository) DeleteMembership(ctx context.Context, accountID string, userID string) (bool, error) {
	query := `DELETE FROM account_memberships WHERE account_id = $1 AND user_id = $2;`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete membership for user %s in account %s: %w", userID, accountID, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
