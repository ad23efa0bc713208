package service

import (
	"context"
	"time"

	"clanledger/events"
	"clanledger/models"

	"github.com/shopspring/decimal"
)

// PointsAccountRepository defines the interface for points account data access
type PointsAccountRepository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id int64) (*models.PointsAccount, error)

	// GetByUserID retrieves an account by its owning user's ID
	GetByUserID(ctx context.Context, userID int64) (*models.PointsAccount, error)

	// Create creates a new account with the starting Elo rating
	Create(ctx context.Context, userID int64, startingElo float64) (*models.PointsAccount, error)

	// UpdateCurrentPoints overwrites an account's derived point balance
	UpdateCurrentPoints(ctx context.Context, accountID int64, points decimal.Decimal) error

	// UpdateElo overwrites an account's Elo rating
	UpdateElo(ctx context.Context, accountID int64, elo float64) error
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	// Create creates a new submission of any kind
	Create(ctx context.Context, submission *models.Submission) error

	// GetByID retrieves a submission by its ID
	GetByID(ctx context.Context, id int64) (*models.Submission, error)

	// Update updates a submission's flags, points and notes
	Update(ctx context.Context, submission *models.Submission) error

	// Delete hard-deletes a submission
	Delete(ctx context.Context, id int64) error

	// ListByAccount returns submissions owned by an account, newest first
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Submission, error)

	// SumAcceptedPoints returns the sum of points across accepted, decided,
	// non-reverted submissions owned by the account, plus points_loser
	// across duels the account lost under the same conditions. An empty
	// result set sums to zero.
	SumAcceptedPoints(ctx context.Context, accountID int64) (decimal.Decimal, error)

	// GetByParticipation retrieves the guild fight points action tied to a
	// participation, or nil when none exists
	GetByParticipation(ctx context.Context, participationID int64) (*models.Submission, error)

	// ListByFight returns all guild fight points actions tied to a fight's
	// participations
	ListByFight(ctx context.Context, fightID int64) ([]*models.Submission, error)

	// MarkEloReversalApplied records that a duel's one-time Elo reversal ran
	MarkEloReversalApplied(ctx context.Context, id int64) error
}

// GuildFightRepository defines the interface for guild fight data access
type GuildFightRepository interface {
	// Create creates a fight together with its participations
	Create(ctx context.Context, fight *models.GuildFight, participations []*models.GuildFightParticipation) error

	// GetByID retrieves a fight by its ID
	GetByID(ctx context.Context, id int64) (*models.GuildFight, error)

	// GetDetailByID retrieves a fight with its participations loaded
	GetDetailByID(ctx context.Context, id int64) (*models.GuildFightDetail, error)

	// Update updates a fight's status and points
	Update(ctx context.Context, fight *models.GuildFight) error
}

// DailyQuestRepository defines the interface for quest catalog lookups
type DailyQuestRepository interface {
	// Create creates a quest
	Create(ctx context.Context, quest *models.DailyQuest) error

	// GetActiveAt returns the most recent quest whose 24h window contains t,
	// or nil when no quest window covers t
	GetActiveAt(ctx context.Context, t time.Time) (*models.DailyQuest, error)
}

// ChangeOp identifies the kind of submission mutation that occurred.
type ChangeOp int

const (
	ChangeOpCreate ChangeOp = iota
	ChangeOpUpdate
	ChangeOpDelete
)

// SubmissionChange describes one submission write as seen by the ledger
// observer: the operation, the row state before it, and the row state after.
type SubmissionChange struct {
	Op     ChangeOp
	Before *models.Submission // nil for creates
	After  *models.Submission // nil for deletes
}

// Submission returns the row state relevant to recomputation: the new state,
// or the deleted state for deletes.
func (c SubmissionChange) Submission() *models.Submission {
	if c.After != nil {
		return c.After
	}
	return c.Before
}

// LedgerService is the reactive aggregation engine. It is invoked inline
// after every submission write, before the owning transaction commits.
type LedgerService interface {
	// HandleSubmissionChange recomputes the affected account balances and,
	// for creates and updates, publishes exactly one classified event to
	// the unit of work's transactional bus.
	HandleSubmissionChange(ctx context.Context, uow UnitOfWork, change SubmissionChange) error

	// RecomputeAccount re-derives an account's current points from its full
	// accepted submission history and persists the result.
	RecomputeAccount(ctx context.Context, uow UnitOfWork, accountID int64) error
}

// SubmissionService defines the mutation entry points for submissions. Every
// write runs the ledger observer inline within its transaction.
type SubmissionService interface {
	// SubmitUserPoints creates a player score proof submission
	SubmitUserPoints(ctx context.Context, params UserPointParams) (*models.Submission, error)

	// SubmitEventQuest creates an event quest proof submission
	SubmitEventQuest(ctx context.Context, params EventQuestParams) (*models.Submission, error)

	// SubmitOneOnOne creates a duel result submission
	SubmitOneOnOne(ctx context.Context, params OneOnOneParams) (*models.Submission, error)

	// GrantManagerPoints creates a pre-accepted manager action
	GrantManagerPoints(ctx context.Context, accountID, managerID int64, points decimal.Decimal, note string) (*models.Submission, error)

	// DecideSubmission records a manager verdict on a submission
	DecideSubmission(ctx context.Context, id, managerID int64, accept bool, points decimal.Decimal, note string) (*models.Submission, error)

	// RevertSubmission rolls back a previously-settled submission
	RevertSubmission(ctx context.Context, id, managerID int64) (*models.Submission, error)

	// DeleteSubmission hard-deletes a submission
	DeleteSubmission(ctx context.Context, id int64) error

	// GetSubmission retrieves a submission by ID
	GetSubmission(ctx context.Context, id int64) (*models.Submission, error)
}

// UserPointParams carries the fields of a player score proof.
type UserPointParams struct {
	AccountID     int64
	GamemodeID    int64
	TankID        int64
	Score         int64
	Proof         string
	SubmitterNote string
}

// EventQuestParams carries the fields of an event quest proof.
type EventQuestParams struct {
	AccountID     int64
	Proof         string
	SubmitterNote string
}

// OneOnOneParams carries the fields of a duel result. ExpectedOutcome of
// zero defaults to an even 0.5.
type OneOnOneParams struct {
	WinnerAccountID int64
	LoserAccountID  int64
	Proof           string
	Points          decimal.Decimal
	PointsLoser     decimal.Decimal
	ExpectedOutcome float64
}

// GuildFightService drives guild fight settlement.
type GuildFightService interface {
	// CreateGuildFight records a new fight with its participations
	CreateGuildFight(ctx context.Context, fight *models.GuildFight, participations []*models.GuildFightParticipation) error

	// SetGuildFightStatus transitions a fight's status. Concluding a fight
	// upserts one points action per participant; moving it back to
	// in-progress deletes them all.
	SetGuildFightStatus(ctx context.Context, fightID int64, status models.GuildFightStatus) (*models.GuildFight, error)
}

// AccountService defines account lookup and creation for the owning web app.
type AccountService interface {
	// GetOrCreateAccount retrieves a user's account or creates one with the
	// starting Elo rating
	GetOrCreateAccount(ctx context.Context, userID int64) (*models.PointsAccount, error)

	// GetAccount retrieves a user's account, failing when it does not exist
	GetAccount(ctx context.Context, userID int64) (*models.PointsAccount, error)
}

// QuestService resolves the daily quest window a submission falls into.
type QuestService interface {
	// DailyQuestFor returns the quest active at the submission's timestamp,
	// or nil when no quest window covers it
	DailyQuestFor(ctx context.Context, submission *models.Submission) (*models.DailyQuest, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	PointsAccountRepository() PointsAccountRepository
	SubmissionRepository() SubmissionRepository
	GuildFightRepository() GuildFightRepository
	DailyQuestRepository() DailyQuestRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
