package service

import (
	"context"
	"testing"

	"clanledger/events"
	"clanledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type guildFightTestFixture struct {
	service        GuildFightService
	uow            *MockUnitOfWork
	accountRepo    *MockPointsAccountRepository
	submissionRepo *MockSubmissionRepository
	fightRepo      *MockGuildFightRepository
	bus            *CapturingEventPublisher
}

func newGuildFightTestFixture(t *testing.T) *guildFightTestFixture {
	t.Helper()

	uow := new(MockUnitOfWork)
	accountRepo := new(MockPointsAccountRepository)
	submissionRepo := new(MockSubmissionRepository)
	fightRepo := new(MockGuildFightRepository)
	bus := &CapturingEventPublisher{}
	uow.SetRepositories(accountRepo, submissionRepo, bus)
	uow.SetGuildFightRepository(fightRepo)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)

	ledger := NewLedgerService(32, false)
	return &guildFightTestFixture{
		service:        NewGuildFightService(factory, ledger),
		uow:            uow,
		accountRepo:    accountRepo,
		submissionRepo: submissionRepo,
		fightRepo:      fightRepo,
		bus:            bus,
	}
}

// twoSidedFight builds a fight with one winner-side and one loser-side
// participation.
func twoSidedFight(status models.GuildFightStatus) *models.GuildFightDetail {
	return &models.GuildFightDetail{
		Fight: &models.GuildFight{
			ID:           5,
			Status:       status,
			PointsWinner: decimal.RequireFromString("30"),
			PointsLoser:  decimal.RequireFromString("5"),
			Opponent:     "Rival Clan",
		},
		Participations: []*models.GuildFightParticipation{
			{ID: 100, FightID: 5, AccountID: 1, Winner: true},
			{ID: 101, FightID: 5, AccountID: 2, Winner: false},
		},
	}
}

func (f *guildFightTestFixture) expectRecompute(ctx context.Context, accountID int64, sum string) {
	f.submissionRepo.On("SumAcceptedPoints", ctx, accountID).Return(decimal.RequireFromString(sum), nil)
	f.accountRepo.On("UpdateCurrentPoints", ctx, accountID, decimal.RequireFromString(sum)).Return(nil)
}

func TestCreateGuildFight(t *testing.T) {
	ctx := context.Background()
	f := newGuildFightTestFixture(t)

	fight := &models.GuildFight{Opponent: "Rival Clan"}
	participations := []*models.GuildFightParticipation{{AccountID: 1, Winner: true}}
	f.fightRepo.On("Create", ctx, fight, participations).Return(nil)

	err := f.service.CreateGuildFight(ctx, fight, participations)

	require.NoError(t, err)
	assert.Equal(t, models.GuildFightStatusInProgress, fight.Status)
	f.fightRepo.AssertExpectations(t)

	// Creation only announces the fight; no points move yet
	require.Len(t, f.bus.Events, 1)
	assert.Equal(t, events.EventTypeNewGuildFight, f.bus.Events[0].Type())
	f.submissionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSetGuildFightStatus_ConcludeGrantsActions(t *testing.T) {
	ctx := context.Background()
	f := newGuildFightTestFixture(t)

	detail := twoSidedFight(models.GuildFightStatusInProgress)
	f.fightRepo.On("GetDetailByID", ctx, int64(5)).Return(detail, nil)
	f.fightRepo.On("Update", ctx, detail.Fight).Return(nil)

	// No actions exist yet, so settlement creates one per participation
	f.submissionRepo.On("GetByParticipation", ctx, int64(100)).Return(nil, nil)
	f.submissionRepo.On("GetByParticipation", ctx, int64(101)).Return(nil, nil)

	var created []*models.Submission
	f.submissionRepo.On("Create", ctx, mock.AnythingOfType("*models.Submission")).Return(nil).Run(func(args mock.Arguments) {
		created = append(created, args.Get(1).(*models.Submission))
	})
	f.expectRecompute(ctx, 1, "30")
	f.expectRecompute(ctx, 2, "5")

	fight, err := f.service.SetGuildFightStatus(ctx, 5, models.GuildFightStatusWon)

	require.NoError(t, err)
	assert.Equal(t, models.GuildFightStatusWon, fight.Status)

	require.Len(t, created, 2)
	winnerAction, loserAction := created[0], created[1]
	assert.Equal(t, models.SubmissionKindGuildFightPoints, winnerAction.Kind)
	assert.Equal(t, "Points from Guild fight", winnerAction.ManagerNote)
	assert.True(t, winnerAction.Accepted)
	assert.True(t, winnerAction.Decided)
	assert.True(t, winnerAction.Points.Equal(decimal.RequireFromString("30")))
	require.NotNil(t, winnerAction.ParticipationID)
	assert.Equal(t, int64(100), *winnerAction.ParticipationID)
	assert.True(t, loserAction.Points.Equal(decimal.RequireFromString("5")))

	// One results event plus one classified event per granted action
	require.Len(t, f.bus.Events, 3)
	assert.Equal(t, events.EventTypeGuildFightResults, f.bus.Events[0].Type())
	assert.Equal(t, events.EventTypeNewGuildFightPoints, f.bus.Events[1].Type())
	assert.Equal(t, events.EventTypeNewGuildFightPoints, f.bus.Events[2].Type())
}

func TestSetGuildFightStatus_ReplayUpdatesExistingActions(t *testing.T) {
	ctx := context.Background()
	f := newGuildFightTestFixture(t)

	detail := twoSidedFight(models.GuildFightStatusWon)
	f.fightRepo.On("GetDetailByID", ctx, int64(5)).Return(detail, nil)
	f.fightRepo.On("Update", ctx, detail.Fight).Return(nil)

	winnerPID, loserPID := int64(100), int64(101)
	existingWinner := &models.Submission{
		ID: 50, Kind: models.SubmissionKindGuildFightPoints, AccountID: 1,
		Accepted: true, Decided: true,
		Points: decimal.RequireFromString("30"), ParticipationID: &winnerPID,
	}
	existingLoser := &models.Submission{
		ID: 51, Kind: models.SubmissionKindGuildFightPoints, AccountID: 2,
		Accepted: true, Decided: true,
		Points: decimal.RequireFromString("5"), ParticipationID: &loserPID,
	}
	f.submissionRepo.On("GetByParticipation", ctx, int64(100)).Return(existingWinner, nil)
	f.submissionRepo.On("GetByParticipation", ctx, int64(101)).Return(existingLoser, nil)
	f.submissionRepo.On("Update", ctx, mock.AnythingOfType("*models.Submission")).Return(nil)
	f.expectRecompute(ctx, 1, "30")
	f.expectRecompute(ctx, 2, "5")

	_, err := f.service.SetGuildFightStatus(ctx, 5, models.GuildFightStatusWon)

	require.NoError(t, err)
	// The same participation never yields a second action
	f.submissionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.submissionRepo.AssertNumberOfCalls(t, "Update", 2)
}

func TestSetGuildFightStatus_DrawPaysLoserPointsToBothSides(t *testing.T) {
	ctx := context.Background()
	f := newGuildFightTestFixture(t)

	detail := twoSidedFight(models.GuildFightStatusInProgress)
	f.fightRepo.On("GetDetailByID", ctx, int64(5)).Return(detail, nil)
	f.fightRepo.On("Update", ctx, detail.Fight).Return(nil)
	f.submissionRepo.On("GetByParticipation", ctx, mock.AnythingOfType("int64")).Return(nil, nil)

	var created []*models.Submission
	f.submissionRepo.On("Create", ctx, mock.AnythingOfType("*models.Submission")).Return(nil).Run(func(args mock.Arguments) {
		created = append(created, args.Get(1).(*models.Submission))
	})
	f.expectRecompute(ctx, 1, "5")
	f.expectRecompute(ctx, 2, "5")

	_, err := f.service.SetGuildFightStatus(ctx, 5, models.GuildFightStatusDraw)

	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, action := range created {
		assert.True(t, action.Points.Equal(decimal.RequireFromString("5")))
	}
}

func TestSetGuildFightStatus_RevertToInProgressDeletesActions(t *testing.T) {
	ctx := context.Background()
	f := newGuildFightTestFixture(t)

	detail := twoSidedFight(models.GuildFightStatusWon)
	f.fightRepo.On("GetDetailByID", ctx, int64(5)).Return(detail, nil)
	f.fightRepo.On("Update", ctx, detail.Fight).Return(nil)

	winnerPID, loserPID := int64(100), int64(101)
	actions := []*models.Submission{
		{ID: 50, Kind: models.SubmissionKindGuildFightPoints, AccountID: 1, Accepted: true, Decided: true, ParticipationID: &winnerPID},
		{ID: 51, Kind: models.SubmissionKindGuildFightPoints, AccountID: 2, Accepted: true, Decided: true, ParticipationID: &loserPID},
	}
	f.submissionRepo.On("ListByFight", ctx, int64(5)).Return(actions, nil)
	f.submissionRepo.On("Delete", ctx, int64(50)).Return(nil)
	f.submissionRepo.On("Delete", ctx, int64(51)).Return(nil)
	f.expectRecompute(ctx, 1, "0")
	f.expectRecompute(ctx, 2, "0")

	fight, err := f.service.SetGuildFightStatus(ctx, 5, models.GuildFightStatusInProgress)

	require.NoError(t, err)
	assert.Equal(t, models.GuildFightStatusInProgress, fight.Status)
	f.submissionRepo.AssertExpectations(t)
	// Deletions recompute silently: no results event, no per-action events
	assert.Empty(t, f.bus.Events)
}

func TestSetGuildFightStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newGuildFightTestFixture(t)

	f.fightRepo.On("GetDetailByID", ctx, int64(99)).Return(nil, nil)

	_, err := f.service.SetGuildFightStatus(ctx, 99, models.GuildFightStatusWon)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	f.uow.AssertNotCalled(t, "Commit")
}
