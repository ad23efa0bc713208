package testutil

import (
	"clanledger/models"

	"github.com/shopspring/decimal"
)

// CreateTestSubmission creates an accepted, decided generic submission
func CreateTestSubmission(accountID int64, points string) *models.Submission {
	return &models.Submission{
		Kind:      models.SubmissionKindGeneric,
		AccountID: accountID,
		Accepted:  true,
		Decided:   true,
		Points:    decimal.RequireFromString(points),
	}
}

// CreateTestUserPointSubmission creates an undecided player score proof
func CreateTestUserPointSubmission(accountID int64) *models.Submission {
	gamemode := int64(1)
	tank := int64(1)
	return &models.Submission{
		Kind:          models.SubmissionKindUserPoint,
		AccountID:     accountID,
		GamemodeID:    &gamemode,
		TankID:        &tank,
		Score:         250000,
		Proof:         "https://example.com/proof.png",
		SubmitterNote: "new highscore",
	}
}

// CreateTestDuel creates an accepted duel submission between two accounts
func CreateTestDuel(winnerAccountID, loserAccountID int64, points, pointsLoser string, expectedOutcome float64) *models.Submission {
	return &models.Submission{
		Kind:            models.SubmissionKindOneOnOne,
		AccountID:       winnerAccountID,
		LoserAccountID:  &loserAccountID,
		Accepted:        true,
		Decided:         true,
		Points:          decimal.RequireFromString(points),
		PointsLoser:     decimal.RequireFromString(pointsLoser),
		ExpectedOutcome: expectedOutcome,
		Proof:           "https://example.com/duel.png",
	}
}

// CreateTestGuildFight creates an in-progress fight
func CreateTestGuildFight(pointsWinner, pointsLoser string) *models.GuildFight {
	return &models.GuildFight{
		Status:       models.GuildFightStatusInProgress,
		PointsWinner: decimal.RequireFromString(pointsWinner),
		PointsLoser:  decimal.RequireFromString(pointsLoser),
		Opponent:     "rival clan",
	}
}
