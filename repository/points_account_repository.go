package repository

import (
	"context"
	"fmt"

	"clanledger/database"
	"clanledger/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PointsAccountRepository implements the PointsAccountRepository interface
type PointsAccountRepository struct {
	q queryable
}

// NewPointsAccountRepository creates a new points account repository
func NewPointsAccountRepository(db *database.DB) *PointsAccountRepository {
	return &PointsAccountRepository{q: db.Pool}
}

// newPointsAccountRepositoryWithTx creates a new points account repository with a transaction
func newPointsAccountRepositoryWithTx(tx queryable) *PointsAccountRepository {
	return &PointsAccountRepository{q: tx}
}

const accountColumns = `id, user_id, current_points, elo, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.PointsAccount, error) {
	var account models.PointsAccount
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.CurrentPoints,
		&account.Elo,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by its ID
func (r *PointsAccountRepository) GetByID(ctx context.Context, id int64) (*models.PointsAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM points_accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

// GetByUserID retrieves an account by its owning user's ID
func (r *PointsAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.PointsAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM points_accounts WHERE user_id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}
	return account, nil
}

// Create creates a new account with the starting Elo rating
func (r *PointsAccountRepository) Create(ctx context.Context, userID int64, startingElo float64) (*models.PointsAccount, error) {
	query := `
		INSERT INTO points_accounts (user_id, elo)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, startingElo))
	if err != nil {
		return nil, fmt.Errorf("failed to create account for user %d: %w", userID, err)
	}
	return account, nil
}

// UpdateCurrentPoints overwrites an account's derived point balance
func (r *PointsAccountRepository) UpdateCurrentPoints(ctx context.Context, accountID int64, points decimal.Decimal) error {
	query := `
		UPDATE points_accounts
		SET current_points = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, points, accountID)
	if err != nil {
		return fmt.Errorf("failed to update current points for account %d: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", accountID)
	}

	return nil
}

// UpdateElo overwrites an account's Elo rating
func (r *PointsAccountRepository) UpdateElo(ctx context.Context, accountID int64, elo float64) error {
	query := `
		UPDATE points_accounts
		SET elo = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, elo, accountID)
	if err != nil {
		return fmt.Errorf("failed to update elo for account %d: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", accountID)
	}

	return nil
}
