package service

import (
	"context"
	"time"

	"clanledger/events"
	"clanledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPointsAccountRepository is a mock implementation of PointsAccountRepository
type MockPointsAccountRepository struct {
	mock.Mock
}

func (m *MockPointsAccountRepository) GetByID(ctx context.Context, id int64) (*models.PointsAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PointsAccount), args.Error(1)
}

func (m *MockPointsAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.PointsAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PointsAccount), args.Error(1)
}

func (m *MockPointsAccountRepository) Create(ctx context.Context, userID int64, startingElo float64) (*models.PointsAccount, error) {
	args := m.Called(ctx, userID, startingElo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PointsAccount), args.Error(1)
}

func (m *MockPointsAccountRepository) UpdateCurrentPoints(ctx context.Context, accountID int64, points decimal.Decimal) error {
	args := m.Called(ctx, accountID, points)
	return args.Error(0)
}

func (m *MockPointsAccountRepository) UpdateElo(ctx context.Context, accountID int64, elo float64) error {
	args := m.Called(ctx, accountID, elo)
	return args.Error(0)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Submission, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) SumAcceptedPoints(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSubmissionRepository) GetByParticipation(ctx context.Context, participationID int64) (*models.Submission, error) {
	args := m.Called(ctx, participationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListByFight(ctx context.Context, fightID int64) ([]*models.Submission, error) {
	args := m.Called(ctx, fightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) MarkEloReversalApplied(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGuildFightRepository is a mock implementation of GuildFightRepository
type MockGuildFightRepository struct {
	mock.Mock
}

func (m *MockGuildFightRepository) Create(ctx context.Context, fight *models.GuildFight, participations []*models.GuildFightParticipation) error {
	args := m.Called(ctx, fight, participations)
	return args.Error(0)
}

func (m *MockGuildFightRepository) GetByID(ctx context.Context, id int64) (*models.GuildFight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildFight), args.Error(1)
}

func (m *MockGuildFightRepository) GetDetailByID(ctx context.Context, id int64) (*models.GuildFightDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildFightDetail), args.Error(1)
}

func (m *MockGuildFightRepository) Update(ctx context.Context, fight *models.GuildFight) error {
	args := m.Called(ctx, fight)
	return args.Error(0)
}

// MockDailyQuestRepository is a mock implementation of DailyQuestRepository
type MockDailyQuestRepository struct {
	mock.Mock
}

func (m *MockDailyQuestRepository) Create(ctx context.Context, quest *models.DailyQuest) error {
	args := m.Called(ctx, quest)
	return args.Error(0)
}

func (m *MockDailyQuestRepository) GetActiveAt(ctx context.Context, t time.Time) (*models.DailyQuest, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyQuest), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// CapturingEventPublisher records every published event in order.
type CapturingEventPublisher struct {
	Events []events.Event
}

func (p *CapturingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// attached with the setters so tests only wire what they use.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo    PointsAccountRepository
	submissionRepo SubmissionRepository
	guildFightRepo GuildFightRepository
	dailyQuestRepo DailyQuestRepository
	eventBus       EventPublisher
}

// SetRepositories attaches the commonly used repositories
func (m *MockUnitOfWork) SetRepositories(accountRepo PointsAccountRepository, submissionRepo SubmissionRepository, eventBus EventPublisher) {
	m.accountRepo = accountRepo
	m.submissionRepo = submissionRepo
	m.eventBus = eventBus
}

// SetGuildFightRepository attaches the guild fight repository
func (m *MockUnitOfWork) SetGuildFightRepository(repo GuildFightRepository) {
	m.guildFightRepo = repo
}

// SetDailyQuestRepository attaches the daily quest repository
func (m *MockUnitOfWork) SetDailyQuestRepository(repo DailyQuestRepository) {
	m.dailyQuestRepo = repo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PointsAccountRepository() PointsAccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) SubmissionRepository() SubmissionRepository {
	return m.submissionRepo
}

func (m *MockUnitOfWork) GuildFightRepository() GuildFightRepository {
	return m.guildFightRepo
}

func (m *MockUnitOfWork) DailyQuestRepository() DailyQuestRepository {
	return m.dailyQuestRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
