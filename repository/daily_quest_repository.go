package repository

import (
	"context"
	"fmt"
	"time"

	"clanledger/database"
	"clanledger/models"

	"github.com/jackc/pgx/v5"
)

// DailyQuestRepository implements the DailyQuestRepository interface
type DailyQuestRepository struct {
	q queryable
}

// NewDailyQuestRepository creates a new daily quest repository
func NewDailyQuestRepository(db *database.DB) *DailyQuestRepository {
	return &DailyQuestRepository{q: db.Pool}
}

// newDailyQuestRepositoryWithTx creates a new daily quest repository with a transaction
func newDailyQuestRepositoryWithTx(tx queryable) *DailyQuestRepository {
	return &DailyQuestRepository{q: tx}
}

// Create creates a quest
func (r *DailyQuestRepository) Create(ctx context.Context, quest *models.DailyQuest) error {
	query := `
		INSERT INTO daily_quests (date, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, quest.Date, quest.Description).Scan(&quest.ID, &quest.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create daily quest: %w", err)
	}

	return nil
}

// GetActiveAt returns the most recent quest whose 24h window contains t,
// or nil when no quest window covers t
func (r *DailyQuestRepository) GetActiveAt(ctx context.Context, t time.Time) (*models.DailyQuest, error) {
	query := `
		SELECT id, date, description, created_at
		FROM daily_quests
		WHERE date BETWEEN $1 AND $2
		ORDER BY date DESC
		LIMIT 1
	`

	var quest models.DailyQuest
	err := r.q.QueryRow(ctx, query, t.Add(-24*time.Hour), t).Scan(
		&quest.ID,
		&quest.Date,
		&quest.Description,
		&quest.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest active at %s: %w", t, err)
	}

	return &quest, nil
}
