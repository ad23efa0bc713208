package service

import (
	"context"
	"fmt"

	"clanledger/events"
	"clanledger/models"
	"clanledger/rating"

	log "github.com/sirupsen/logrus"
)

// ledgerService keeps account balances consistent with submission history.
// It is deliberately lazy about efficiency: every mutation triggers a full
// re-scan of the account's accepted submissions rather than an incremental
// adjustment, so the balance is correct regardless of which flags flipped.
type ledgerService struct {
	eloK                  float64
	idempotentEloReversal bool
}

// NewLedgerService creates a new ledger service. eloK is the K-factor for
// duel rating reversals. When idempotentEloReversal is set, the Elo reversal
// of a reverted duel is applied at most once per duel; otherwise every save
// of an already-reverted duel re-applies it, matching historical behavior.
func NewLedgerService(eloK float64, idempotentEloReversal bool) LedgerService {
	return &ledgerService{
		eloK:                  eloK,
		idempotentEloReversal: idempotentEloReversal,
	}
}

// HandleSubmissionChange is the single observer for all submission writes.
// Deletes only recompute; creates and updates additionally publish exactly
// one event classified by the submission's variant and reverted flag.
func (l *ledgerService) HandleSubmissionChange(ctx context.Context, uow UnitOfWork, change SubmissionChange) error {
	submission := change.Submission()
	if submission == nil {
		return fmt.Errorf("submission change carries no row state")
	}

	if err := l.recomputeForSubmission(ctx, uow, submission, change.Op); err != nil {
		return err
	}

	if change.Op == ChangeOpDelete {
		return nil
	}

	uow.EventBus().Publish(classifySubmission(submission))
	return nil
}

// classifySubmission maps a submission to its notification event. The rules
// are mutually exclusive and ordered: reverted wins over every variant, and
// the final case is the catch-all for submissions matching no known variant.
func classifySubmission(submission *models.Submission) events.Event {
	if submission.Reverted {
		return events.SubmissionRevertedEvent{Submission: submission}
	}

	switch submission.Kind {
	case models.SubmissionKindUserPoint:
		return events.NewUserPointSubmissionEvent{
			Submission: submission,
			Accepted:   submission.Accepted,
			Decided:    submission.Decided,
		}
	case models.SubmissionKindGuildFightPoints:
		return events.NewGuildFightPointsEvent{
			Submission: submission,
			Accepted:   submission.Accepted,
		}
	case models.SubmissionKindManagerAction:
		return events.NewManagerSubmissionEvent{
			Submission: submission,
			Accepted:   submission.Accepted,
		}
	case models.SubmissionKindOneOnOne:
		return events.NewOneOnOneSubmissionEvent{
			Submission: submission,
			Accepted:   submission.Accepted,
			Decided:    submission.Decided,
		}
	case models.SubmissionKindEventQuest:
		return events.NewEventQuestSubmissionEvent{
			Submission: submission,
			Accepted:   submission.Accepted,
			Decided:    submission.Decided,
		}
	default:
		return events.NewGenericSubmissionEvent{
			Submission: submission,
			Accepted:   submission.Accepted,
			Decided:    submission.Decided,
		}
	}
}

// recomputeForSubmission re-derives the balances of every account the
// submission touches. Duels also cover the loser's account and, when
// reverted, undo the rating delta applied at settlement.
func (l *ledgerService) recomputeForSubmission(ctx context.Context, uow UnitOfWork, submission *models.Submission, op ChangeOp) error {
	if submission.IsDuel() && submission.LoserAccountID != nil {
		// The rating delta is only reversed on saves: a hard delete removes
		// the row without touching Elo.
		if submission.Reverted && op != ChangeOpDelete {
			if err := l.reverseDuelElo(ctx, uow, submission); err != nil {
				return err
			}
		}

		if err := l.RecomputeAccount(ctx, uow, *submission.LoserAccountID); err != nil {
			return err
		}
	}

	return l.RecomputeAccount(ctx, uow, submission.AccountID)
}

// reverseDuelElo subtracts the rating deltas presumed applied when the duel
// was settled. Without the idempotent mode this happens on every save of a
// reverted duel, repeated saves included.
func (l *ledgerService) reverseDuelElo(ctx context.Context, uow UnitOfWork, submission *models.Submission) error {
	if l.idempotentEloReversal && submission.EloReversalApplied {
		return nil
	}

	winner, err := uow.PointsAccountRepository().GetByID(ctx, submission.AccountID)
	if err != nil {
		return fmt.Errorf("failed to get winner account: %w", err)
	}
	loser, err := uow.PointsAccountRepository().GetByID(ctx, *submission.LoserAccountID)
	if err != nil {
		return fmt.Errorf("failed to get loser account: %w", err)
	}
	if winner == nil || loser == nil {
		// Accounts are never deleted while their owner exists; a missing
		// account means there is nothing to adjust.
		return nil
	}

	newWinnerElo := winner.Elo - rating.WinnerDelta(l.eloK, submission.ExpectedOutcome)
	newLoserElo := loser.Elo - rating.LoserDelta(l.eloK, submission.ExpectedOutcome)

	if err := uow.PointsAccountRepository().UpdateElo(ctx, winner.ID, newWinnerElo); err != nil {
		return fmt.Errorf("failed to update winner elo: %w", err)
	}
	if err := uow.PointsAccountRepository().UpdateElo(ctx, loser.ID, newLoserElo); err != nil {
		return fmt.Errorf("failed to update loser elo: %w", err)
	}

	log.WithFields(log.Fields{
		"submissionID": submission.ID,
		"winnerElo":    newWinnerElo,
		"loserElo":     newLoserElo,
	}).Debug("Reversed duel rating deltas")

	if l.idempotentEloReversal {
		if err := uow.SubmissionRepository().MarkEloReversalApplied(ctx, submission.ID); err != nil {
			return fmt.Errorf("failed to mark elo reversal applied: %w", err)
		}
		submission.EloReversalApplied = true
	}

	return nil
}

// RecomputeAccount re-scans the account's full accepted history and writes
// the resulting balance back.
func (l *ledgerService) RecomputeAccount(ctx context.Context, uow UnitOfWork, accountID int64) error {
	sum, err := uow.SubmissionRepository().SumAcceptedPoints(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to sum accepted points for account %d: %w", accountID, err)
	}

	if err := uow.PointsAccountRepository().UpdateCurrentPoints(ctx, accountID, sum); err != nil {
		return fmt.Errorf("failed to update current points for account %d: %w", accountID, err)
	}

	return nil
}
