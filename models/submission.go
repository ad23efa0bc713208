package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionKind discriminates the submission variants. Classification in
// the ledger observer switches on this instead of runtime type checks.
type SubmissionKind string

const (
	// SubmissionKindGeneric is the base submission with no variant fields.
	SubmissionKindGeneric SubmissionKind = "generic"
	// SubmissionKindUserPoint is a player-submitted score proof.
	SubmissionKindUserPoint SubmissionKind = "user_point"
	// SubmissionKindManagerAction is manager-granted points with no player
	// submission step.
	SubmissionKindManagerAction SubmissionKind = "manager_action"
	// SubmissionKindEventQuest is a proof-based submission tied to a timed
	// quest window.
	SubmissionKindEventQuest SubmissionKind = "event_quest"
	// SubmissionKindOneOnOne is a duel result between two accounts.
	SubmissionKindOneOnOne SubmissionKind = "one_on_one"
	// SubmissionKindGuildFightPoints is a manager action synthesized from a
	// guild fight participation.
	SubmissionKindGuildFightPoints SubmissionKind = "guild_fight_points"
)

// Submission is a claim of points earned, pending or resolved by manager
// judgement. All variants share one row shape; variant-specific fields are
// nullable and only meaningful for the matching Kind.
//
// Decided means a manager has rendered a verdict; Accepted is only
// meaningful when Decided is true. Reverted flags a previously-settled
// submission as rolled back without deleting the record.
type Submission struct {
	ID          int64           `db:"id"`
	Kind        SubmissionKind  `db:"kind"`
	AccountID   int64           `db:"account_id"`
	ManagerID   *int64          `db:"manager_id"`
	Accepted    bool            `db:"accepted"`
	Decided     bool            `db:"decided"`
	Reverted    bool            `db:"reverted"`
	Points      decimal.Decimal `db:"points"`
	ManagerNote string          `db:"manager_note"`
	CreatedAt   time.Time       `db:"created_at"`

	// user_point and event_quest fields
	SubmitterNote string `db:"submitter_note"`
	Proof         string `db:"proof"`
	GamemodeID    *int64 `db:"gamemode_id"`
	TankID        *int64 `db:"tank_id"`
	Score         int64  `db:"score"`

	// one_on_one fields
	LoserAccountID  *int64          `db:"loser_account_id"`
	PointsLoser     decimal.Decimal `db:"points_loser"`
	ExpectedOutcome float64         `db:"expected_outcome"`
	// EloReversalApplied records that the one-time Elo reversal for a
	// reverted duel has been performed. Only consulted when the idempotent
	// reversal mode is enabled.
	EloReversalApplied bool `db:"elo_reversal_applied"`

	// guild_fight_points field, unique per participation
	ParticipationID *int64 `db:"participation_id"`
}

// IsDuel reports whether the submission is a one-on-one fight result.
func (s *Submission) IsDuel() bool {
	return s.Kind == SubmissionKindOneOnOne
}

// CountsTowardBalance reports whether the submission contributes to its
// account's current points.
func (s *Submission) CountsTowardBalance() bool {
	return s.Accepted && s.Decided && !s.Reverted
}
