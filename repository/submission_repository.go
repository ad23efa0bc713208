package repository

import (
	"context"
	"fmt"

	"clanledger/database"
	"clanledger/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SubmissionRepository implements the SubmissionRepository interface
type SubmissionRepository struct {
	q queryable
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{q: db.Pool}
}

// newSubmissionRepositoryWithTx creates a new submission repository with a transaction
func newSubmissionRepositoryWithTx(tx queryable) *SubmissionRepository {
	return &SubmissionRepository{q: tx}
}

const submissionColumns = `
	id, kind, account_id, manager_id, accepted, decided, reverted, points,
	manager_note, submitter_note, proof, gamemode_id, tank_id, score,
	loser_account_id, points_loser, expected_outcome, elo_reversal_applied,
	participation_id, created_at`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID,
		&s.Kind,
		&s.AccountID,
		&s.ManagerID,
		&s.Accepted,
		&s.Decided,
		&s.Reverted,
		&s.Points,
		&s.ManagerNote,
		&s.SubmitterNote,
		&s.Proof,
		&s.GamemodeID,
		&s.TankID,
		&s.Score,
		&s.LoserAccountID,
		&s.PointsLoser,
		&s.ExpectedOutcome,
		&s.EloReversalApplied,
		&s.ParticipationID,
		&s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create creates a new submission of any kind
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.Kind == "" {
		submission.Kind = models.SubmissionKindGeneric
	}

	query := `
		INSERT INTO submissions
		(kind, account_id, manager_id, accepted, decided, reverted, points,
		 manager_note, submitter_note, proof, gamemode_id, tank_id, score,
		 loser_account_id, points_loser, expected_outcome, participation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		submission.Kind,
		submission.AccountID,
		submission.ManagerID,
		submission.Accepted,
		submission.Decided,
		submission.Reverted,
		submission.Points,
		submission.ManagerNote,
		submission.SubmitterNote,
		submission.Proof,
		submission.GamemodeID,
		submission.TankID,
		submission.Score,
		submission.LoserAccountID,
		submission.PointsLoser,
		submission.ExpectedOutcome,
		submission.ParticipationID,
	).Scan(&submission.ID, &submission.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create %s submission: %w", submission.Kind, err)
	}

	return nil
}

// GetByID retrieves a submission by its ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	submission, err := scanSubmission(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %d: %w", id, err)
	}
	return submission, nil
}

// Update updates a submission's flags, points and notes
func (r *SubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	query := `
		UPDATE submissions
		SET accepted = $1, decided = $2, reverted = $3, points = $4,
		    manager_id = $5, manager_note = $6, points_loser = $7,
		    expected_outcome = $8
		WHERE id = $9
	`

	result, err := r.q.Exec(ctx, query,
		submission.Accepted,
		submission.Decided,
		submission.Reverted,
		submission.Points,
		submission.ManagerID,
		submission.ManagerNote,
		submission.PointsLoser,
		submission.ExpectedOutcome,
		submission.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission %d: %w", submission.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("submission %d not found", submission.ID)
	}

	return nil
}

// Delete hard-deletes a submission
func (r *SubmissionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("submission %d not found", id)
	}

	return nil
}

// ListByAccount returns submissions owned by an account, newest first
func (r *SubmissionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// SumAcceptedPoints returns the derived point balance for an account: the
// sum of points across accepted, decided, non-reverted submissions it owns,
// plus points_loser across duels it lost under the same conditions. An
// empty history sums to zero.
func (r *SubmissionRepository) SumAcceptedPoints(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(
			(SELECT SUM(s.points)
			 FROM submissions s
			 WHERE s.account_id = $1
			   AND s.accepted AND s.decided AND NOT s.reverted),
			0
		) + COALESCE(
			(SELECT SUM(s.points_loser)
			 FROM submissions s
			 WHERE s.loser_account_id = $1
			   AND s.kind = 'one_on_one'
			   AND s.accepted AND s.decided AND NOT s.reverted),
			0
		)
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum accepted points for account %d: %w", accountID, err)
	}

	return sum, nil
}

// GetByParticipation retrieves the guild fight points action tied to a
// participation, or nil when none exists
func (r *SubmissionRepository) GetByParticipation(ctx context.Context, participationID int64) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE participation_id = $1`

	submission, err := scanSubmission(r.q.QueryRow(ctx, query, participationID))
	if err != nil {
		return nil, fmt.Errorf("failed to get points action for participation %d: %w", participationID, err)
	}
	return submission, nil
}

// ListByFight returns all guild fight points actions tied to a fight's
// participations
func (r *SubmissionRepository) ListByFight(ctx context.Context, fightID int64) ([]*models.Submission, error) {
	query := `
		SELECT s.id, s.kind, s.account_id, s.manager_id, s.accepted, s.decided,
		       s.reverted, s.points, s.manager_note, s.submitter_note, s.proof,
		       s.gamemode_id, s.tank_id, s.score, s.loser_account_id,
		       s.points_loser, s.expected_outcome, s.elo_reversal_applied,
		       s.participation_id, s.created_at
		FROM submissions s
		JOIN guild_fight_participations p ON p.id = s.participation_id
		WHERE p.fight_id = $1
	`

	rows, err := r.q.Query(ctx, query, fightID)
	if err != nil {
		return nil, fmt.Errorf("failed to list points actions for fight %d: %w", fightID, err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// MarkEloReversalApplied records that a duel's one-time Elo reversal ran
func (r *SubmissionRepository) MarkEloReversalApplied(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `UPDATE submissions SET elo_reversal_applied = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark elo reversal applied for submission %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("submission %d not found", id)
	}

	return nil
}

func collectSubmissions(rows pgx.Rows) ([]*models.Submission, error) {
	var submissions []*models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return submissions, nil
}
