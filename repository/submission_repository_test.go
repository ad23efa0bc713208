package repository

import (
	"context"
	"testing"

	"clanledger/models"
	"clanledger/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewPointsAccountRepository(testDB.DB)
	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	account, err := accountRepo.Create(ctx, 1000, 1000)
	require.NoError(t, err)

	t.Run("not found", func(t *testing.T) {
		submission, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, submission)
	})

	t.Run("round trip of a score proof", func(t *testing.T) {
		proof := testutil.CreateTestUserPointSubmission(account.ID)
		err := repo.Create(ctx, proof)
		require.NoError(t, err)
		require.NotZero(t, proof.ID)
		assert.False(t, proof.CreatedAt.IsZero())

		loaded, err := repo.GetByID(ctx, proof.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, models.SubmissionKindUserPoint, loaded.Kind)
		assert.Equal(t, account.ID, loaded.AccountID)
		assert.Equal(t, proof.Proof, loaded.Proof)
		assert.Equal(t, proof.Score, loaded.Score)
		assert.False(t, loaded.Decided)
		assert.False(t, loaded.Accepted)
	})

	t.Run("kind defaults to generic", func(t *testing.T) {
		submission := &models.Submission{AccountID: account.ID}
		err := repo.Create(ctx, submission)
		require.NoError(t, err)

		loaded, err := repo.GetByID(ctx, submission.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionKindGeneric, loaded.Kind)
	})
}

func TestSubmissionRepository_SumAcceptedPoints(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewPointsAccountRepository(testDB.DB)
	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	account, err := accountRepo.Create(ctx, 2000, 1000)
	require.NoError(t, err)
	rival, err := accountRepo.Create(ctx, 2001, 1000)
	require.NoError(t, err)

	t.Run("empty history sums to zero", func(t *testing.T) {
		sum, err := repo.SumAcceptedPoints(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("accepted submissions add up", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestSubmission(account.ID, "10")))
		require.NoError(t, repo.Create(ctx, testutil.CreateTestSubmission(account.ID, "15")))

		sum, err := repo.SumAcceptedPoints(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.RequireFromString("25")), "got %s", sum)
	})

	t.Run("undecided and reverted rows do not count", func(t *testing.T) {
		pending := testutil.CreateTestSubmission(account.ID, "40")
		pending.Decided = false
		pending.Accepted = false
		require.NoError(t, repo.Create(ctx, pending))

		reverted := testutil.CreateTestSubmission(account.ID, "100")
		reverted.Reverted = true
		require.NoError(t, repo.Create(ctx, reverted))

		sum, err := repo.SumAcceptedPoints(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.RequireFromString("25")), "got %s", sum)
	})

	t.Run("duel pays the loser share to the loser's account", func(t *testing.T) {
		duel := testutil.CreateTestDuel(account.ID, rival.ID, "50", "10", 0.5)
		require.NoError(t, repo.Create(ctx, duel))

		winnerSum, err := repo.SumAcceptedPoints(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, winnerSum.Equal(decimal.RequireFromString("75")), "got %s", winnerSum)

		loserSum, err := repo.SumAcceptedPoints(ctx, rival.ID)
		require.NoError(t, err)
		assert.True(t, loserSum.Equal(decimal.RequireFromString("10")), "got %s", loserSum)
	})

	t.Run("reverted duel pays neither side", func(t *testing.T) {
		other, err := accountRepo.Create(ctx, 2002, 1000)
		require.NoError(t, err)

		duel := testutil.CreateTestDuel(other.ID, rival.ID, "50", "10", 0.5)
		duel.Reverted = true
		require.NoError(t, repo.Create(ctx, duel))

		winnerSum, err := repo.SumAcceptedPoints(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, winnerSum.IsZero())

		loserSum, err := repo.SumAcceptedPoints(ctx, rival.ID)
		require.NoError(t, err)
		assert.True(t, loserSum.Equal(decimal.RequireFromString("10")), "got %s", loserSum)
	})
}

func TestSubmissionRepository_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewPointsAccountRepository(testDB.DB)
	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	account, err := accountRepo.Create(ctx, 3000, 1000)
	require.NoError(t, err)

	t.Run("manager verdict persists", func(t *testing.T) {
		proof := testutil.CreateTestUserPointSubmission(account.ID)
		require.NoError(t, repo.Create(ctx, proof))

		managerID := int64(77)
		proof.Decided = true
		proof.Accepted = true
		proof.ManagerID = &managerID
		proof.ManagerNote = "verified"
		proof.Points = decimal.RequireFromString("25")
		require.NoError(t, repo.Update(ctx, proof))

		loaded, err := repo.GetByID(ctx, proof.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Decided)
		assert.True(t, loaded.Accepted)
		require.NotNil(t, loaded.ManagerID)
		assert.Equal(t, managerID, *loaded.ManagerID)
		assert.True(t, loaded.Points.Equal(decimal.RequireFromString("25")))
	})

	t.Run("delete removes the row", func(t *testing.T) {
		submission := testutil.CreateTestSubmission(account.ID, "5")
		require.NoError(t, repo.Create(ctx, submission))
		require.NoError(t, repo.Delete(ctx, submission.ID))

		loaded, err := repo.GetByID(ctx, submission.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("mark elo reversal applied", func(t *testing.T) {
		rival, err := accountRepo.Create(ctx, 3001, 1000)
		require.NoError(t, err)
		duel := testutil.CreateTestDuel(account.ID, rival.ID, "50", "10", 0.5)
		require.NoError(t, repo.Create(ctx, duel))

		require.NoError(t, repo.MarkEloReversalApplied(ctx, duel.ID))

		loaded, err := repo.GetByID(ctx, duel.ID)
		require.NoError(t, err)
		assert.True(t, loaded.EloReversalApplied)
	})
}

func TestSubmissionRepository_GuildFightActions(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewPointsAccountRepository(testDB.DB)
	fightRepo := NewGuildFightRepository(testDB.DB)
	repo := NewSubmissionRepository(testDB.DB)
	ctx := context.Background()

	winner, err := accountRepo.Create(ctx, 4000, 1000)
	require.NoError(t, err)
	loser, err := accountRepo.Create(ctx, 4001, 1000)
	require.NoError(t, err)

	fight := testutil.CreateTestGuildFight("30", "5")
	participations := []*models.GuildFightParticipation{
		{AccountID: winner.ID, Winner: true},
		{AccountID: loser.ID, Winner: false},
	}
	require.NoError(t, fightRepo.Create(ctx, fight, participations))

	t.Run("no action exists before settlement", func(t *testing.T) {
		action, err := repo.GetByParticipation(ctx, participations[0].ID)
		require.NoError(t, err)
		assert.Nil(t, action)
	})

	t.Run("lookup by participation and by fight", func(t *testing.T) {
		for i, participation := range participations {
			action := &models.Submission{
				Kind:            models.SubmissionKindGuildFightPoints,
				AccountID:       participation.AccountID,
				Accepted:        true,
				Decided:         true,
				Points:          decimal.RequireFromString("30"),
				ManagerNote:     "Points from Guild fight",
				ParticipationID: &participations[i].ID,
			}
			require.NoError(t, repo.Create(ctx, action))
		}

		action, err := repo.GetByParticipation(ctx, participations[0].ID)
		require.NoError(t, err)
		require.NotNil(t, action)
		assert.Equal(t, winner.ID, action.AccountID)

		actions, err := repo.ListByFight(ctx, fight.ID)
		require.NoError(t, err)
		assert.Len(t, actions, 2)
	})
}
