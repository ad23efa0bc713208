package repository

import (
	"context"
	"fmt"

	"clanledger/database"
	"clanledger/models"

	"github.com/jackc/pgx/v5"
)

// GuildFightRepository implements the GuildFightRepository interface
type GuildFightRepository struct {
	q queryable
}

// NewGuildFightRepository creates a new guild fight repository
func NewGuildFightRepository(db *database.DB) *GuildFightRepository {
	return &GuildFightRepository{q: db.Pool}
}

// newGuildFightRepositoryWithTx creates a new guild fight repository with a transaction
func newGuildFightRepositoryWithTx(tx queryable) *GuildFightRepository {
	return &GuildFightRepository{q: tx}
}

// Create creates a fight together with its participations
func (r *GuildFightRepository) Create(ctx context.Context, fight *models.GuildFight, participations []*models.GuildFightParticipation) error {
	query := `
		INSERT INTO guild_fights (status, points_winner, points_loser, manager_id, opponent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		fight.Status,
		fight.PointsWinner,
		fight.PointsLoser,
		fight.ManagerID,
		fight.Opponent,
	).Scan(&fight.ID, &fight.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create guild fight: %w", err)
	}

	for _, participation := range participations {
		participation.FightID = fight.ID

		err := r.q.QueryRow(ctx,
			`INSERT INTO guild_fight_participations (fight_id, account_id, winner)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			participation.FightID,
			participation.AccountID,
			participation.Winner,
		).Scan(&participation.ID)
		if err != nil {
			return fmt.Errorf("failed to create participation for account %d: %w", participation.AccountID, err)
		}
	}

	return nil
}

// GetByID retrieves a fight by its ID
func (r *GuildFightRepository) GetByID(ctx context.Context, id int64) (*models.GuildFight, error) {
	query := `
		SELECT id, status, points_winner, points_loser, manager_id, opponent, created_at
		FROM guild_fights
		WHERE id = $1
	`

	var fight models.GuildFight
	err := r.q.QueryRow(ctx, query, id).Scan(
		&fight.ID,
		&fight.Status,
		&fight.PointsWinner,
		&fight.PointsLoser,
		&fight.ManagerID,
		&fight.Opponent,
		&fight.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild fight %d: %w", id, err)
	}

	return &fight, nil
}

// GetDetailByID retrieves a fight with its participations loaded
func (r *GuildFightRepository) GetDetailByID(ctx context.Context, id int64) (*models.GuildFightDetail, error) {
	fight, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fight == nil {
		return nil, nil
	}

	rows, err := r.q.Query(ctx,
		`SELECT id, fight_id, account_id, winner
		 FROM guild_fight_participations
		 WHERE fight_id = $1
		 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participations for fight %d: %w", id, err)
	}
	defer rows.Close()

	var participations []*models.GuildFightParticipation
	for rows.Next() {
		var p models.GuildFightParticipation
		if err := rows.Scan(&p.ID, &p.FightID, &p.AccountID, &p.Winner); err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participations: %w", err)
	}

	return &models.GuildFightDetail{
		Fight:          fight,
		Participations: participations,
	}, nil
}

// Update updates a fight's status and points
func (r *GuildFightRepository) Update(ctx context.Context, fight *models.GuildFight) error {
	query := `
		UPDATE guild_fights
		SET status = $1, points_winner = $2, points_loser = $3, manager_id = $4
		WHERE id = $5
	`

	result, err := r.q.Exec(ctx, query,
		fight.Status,
		fight.PointsWinner,
		fight.PointsLoser,
		fight.ManagerID,
		fight.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild fight %d: %w", fight.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild fight %d not found", fight.ID)
	}

	return nil
}
