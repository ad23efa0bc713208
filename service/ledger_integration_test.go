package service_test

import (
	"context"
	"testing"

	"clanledger/events"
	"clanledger/models"
	"clanledger/repository"
	"clanledger/repository/testutil"
	"clanledger/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecomputation_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	ledger := service.NewLedgerService(32, false)
	accounts := service.NewAccountService(uowFactory, 1000)
	submissions := service.NewSubmissionService(uowFactory, ledger)

	winner, err := accounts.GetOrCreateAccount(ctx, 111111)
	require.NoError(t, err)
	rival, err := accounts.GetOrCreateAccount(ctx, 222222)
	require.NoError(t, err)

	managerID := int64(999999)

	balanceOf := func(t *testing.T, userID int64) decimal.Decimal {
		t.Helper()
		account, err := accounts.GetAccount(ctx, userID)
		require.NoError(t, err)
		return account.CurrentPoints
	}

	t.Run("balance tracks the accepted history through grant, decide, revert and delete", func(t *testing.T) {
		// Two manager grants count immediately
		grant, err := submissions.GrantManagerPoints(ctx, winner.ID, managerID, decimal.RequireFromString("10"), "event reward")
		require.NoError(t, err)
		_, err = submissions.GrantManagerPoints(ctx, winner.ID, managerID, decimal.RequireFromString("15"), "event reward")
		require.NoError(t, err)
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("25")))

		// A pending proof contributes nothing until accepted
		proof, err := submissions.SubmitUserPoints(ctx, service.UserPointParams{
			AccountID: winner.ID,
			Score:     500000,
			Proof:     "https://example.com/run.png",
		})
		require.NoError(t, err)
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("25")))

		_, err = submissions.DecideSubmission(ctx, proof.ID, managerID, true, decimal.RequireFromString("100"), "verified")
		require.NoError(t, err)
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("125")))

		// Reverting leaves the row but removes its effect
		_, err = submissions.RevertSubmission(ctx, proof.ID, managerID)
		require.NoError(t, err)
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("25")))

		reverted, err := submissions.GetSubmission(ctx, proof.ID)
		require.NoError(t, err)
		require.NotNil(t, reverted)
		assert.True(t, reverted.Reverted)

		// A hard delete removes one of the grants from the history
		require.NoError(t, submissions.DeleteSubmission(ctx, grant.ID))
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("15")))
	})

	t.Run("duel pays both sides and reverting undoes the rating deltas", func(t *testing.T) {
		duel, err := submissions.SubmitOneOnOne(ctx, service.OneOnOneParams{
			WinnerAccountID: winner.ID,
			LoserAccountID:  rival.ID,
			Proof:           "https://example.com/duel.png",
			Points:          decimal.RequireFromString("5"),
			PointsLoser:     decimal.RequireFromString("3"),
			ExpectedOutcome: 0.7,
		})
		require.NoError(t, err)

		// Undecided duel moves nothing
		assert.True(t, balanceOf(t, 222222).IsZero())

		_, err = submissions.DecideSubmission(ctx, duel.ID, managerID, true, decimal.RequireFromString("5"), "")
		require.NoError(t, err)
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("20")))
		assert.True(t, balanceOf(t, 222222).Equal(decimal.RequireFromString("3")))

		// Settlement never touches ratings
		winnerAccount, err := accounts.GetAccount(ctx, 111111)
		require.NoError(t, err)
		assert.InDelta(t, 1000.0, winnerAccount.Elo, 1e-9)

		// Reverting excludes both payouts and reverses the rating deltas:
		// K=32, E=0.7 gives -9.6 for the winner and +9.6 for the loser
		_, err = submissions.RevertSubmission(ctx, duel.ID, managerID)
		require.NoError(t, err)
		assert.True(t, balanceOf(t, 111111).Equal(decimal.RequireFromString("15")))
		assert.True(t, balanceOf(t, 222222).IsZero())

		winnerAccount, err = accounts.GetAccount(ctx, 111111)
		require.NoError(t, err)
		loserAccount, err := accounts.GetAccount(ctx, 222222)
		require.NoError(t, err)
		assert.InDelta(t, 990.4, winnerAccount.Elo, 1e-9)
		assert.InDelta(t, 1009.6, loserAccount.Elo, 1e-9)
	})
}

func TestGuildFightSettlement_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	ledger := service.NewLedgerService(32, false)
	accounts := service.NewAccountService(uowFactory, 1000)
	fights := service.NewGuildFightService(uowFactory, ledger)
	submissionRepo := repository.NewSubmissionRepository(testDB.DB)

	first, err := accounts.GetOrCreateAccount(ctx, 333333)
	require.NoError(t, err)
	second, err := accounts.GetOrCreateAccount(ctx, 444444)
	require.NoError(t, err)

	balanceOf := func(t *testing.T, userID int64) decimal.Decimal {
		t.Helper()
		account, err := accounts.GetAccount(ctx, userID)
		require.NoError(t, err)
		return account.CurrentPoints
	}

	fight := testutil.CreateTestGuildFight("30", "5")
	participations := []*models.GuildFightParticipation{
		{AccountID: first.ID, Winner: true},
		{AccountID: second.ID, Winner: false},
	}
	require.NoError(t, fights.CreateGuildFight(ctx, fight, participations))

	t.Run("concluding grants one action per participant", func(t *testing.T) {
		_, err := fights.SetGuildFightStatus(ctx, fight.ID, models.GuildFightStatusWon)
		require.NoError(t, err)

		assert.True(t, balanceOf(t, 333333).Equal(decimal.RequireFromString("30")))
		assert.True(t, balanceOf(t, 444444).Equal(decimal.RequireFromString("5")))

		actions, err := submissionRepo.ListByFight(ctx, fight.ID)
		require.NoError(t, err)
		assert.Len(t, actions, 2)
	})

	t.Run("replaying the conclusion does not duplicate actions", func(t *testing.T) {
		_, err := fights.SetGuildFightStatus(ctx, fight.ID, models.GuildFightStatusWon)
		require.NoError(t, err)

		actions, err := submissionRepo.ListByFight(ctx, fight.ID)
		require.NoError(t, err)
		assert.Len(t, actions, 2)
		assert.True(t, balanceOf(t, 333333).Equal(decimal.RequireFromString("30")))
	})

	t.Run("reopening the fight takes every action away", func(t *testing.T) {
		_, err := fights.SetGuildFightStatus(ctx, fight.ID, models.GuildFightStatusInProgress)
		require.NoError(t, err)

		actions, err := submissionRepo.ListByFight(ctx, fight.ID)
		require.NoError(t, err)
		assert.Empty(t, actions)
		assert.True(t, balanceOf(t, 333333).IsZero())
		assert.True(t, balanceOf(t, 444444).IsZero())
	})
}
