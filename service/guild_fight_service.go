package service

import (
	"context"
	"fmt"

	"clanledger/events"
	"clanledger/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// guildFightNote is the fixed manager note on synthesized points actions.
const guildFightNote = "Points from Guild fight"

type guildFightService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
}

// NewGuildFightService creates a new guild fight service
func NewGuildFightService(uowFactory UnitOfWorkFactory, ledger LedgerService) GuildFightService {
	return &guildFightService{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

// CreateGuildFight records a new fight with its participations and announces
// it. No points actions are granted until the fight concludes.
func (s *guildFightService) CreateGuildFight(ctx context.Context, fight *models.GuildFight, participations []*models.GuildFightParticipation) error {
	if fight.Status == 0 {
		fight.Status = models.GuildFightStatusInProgress
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.GuildFightRepository().Create(ctx, fight, participations); err != nil {
		return fmt.Errorf("failed to create guild fight: %w", err)
	}

	uow.EventBus().Publish(events.NewGuildFightEvent{Fight: fight})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetGuildFightStatus transitions a fight's status and settles or reverts
// the synthesized points actions accordingly.
func (s *guildFightService) SetGuildFightStatus(ctx context.Context, fightID int64, status models.GuildFightStatus) (*models.GuildFight, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.GuildFightRepository().GetDetailByID(ctx, fightID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild fight: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("guild fight not found")
	}

	fight := detail.Fight
	fight.Status = status
	if err := uow.GuildFightRepository().Update(ctx, fight); err != nil {
		return nil, fmt.Errorf("failed to update guild fight: %w", err)
	}

	if fight.Concluded() {
		if err := s.settle(ctx, uow, detail); err != nil {
			return nil, err
		}
	} else {
		// Fight moved back to unfinished: take every granted action away
		if err := s.revert(ctx, uow, detail); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return fight, nil
}

// settle grants one points action per participant. Replays update the
// existing row for a participation instead of duplicating it.
func (s *guildFightService) settle(ctx context.Context, uow UnitOfWork, detail *models.GuildFightDetail) error {
	fight := detail.Fight

	uow.EventBus().Publish(events.GuildFightResultsEvent{Fight: fight})

	pointsWinner := fight.PointsWinner
	pointsLoser := fight.PointsLoser
	if fight.Status == models.GuildFightStatusDraw {
		pointsWinner = pointsLoser
	}

	for _, participation := range detail.WinnerParticipations() {
		if err := s.upsertPointsAction(ctx, uow, fight, participation, pointsWinner); err != nil {
			return err
		}
	}
	for _, participation := range detail.LoserParticipations() {
		if err := s.upsertPointsAction(ctx, uow, fight, participation, pointsLoser); err != nil {
			return err
		}
	}

	return nil
}

// upsertPointsAction creates or updates the points action tied to one
// participation. Both paths flow through the ledger observer.
func (s *guildFightService) upsertPointsAction(ctx context.Context, uow UnitOfWork, fight *models.GuildFight, participation *models.GuildFightParticipation, points decimal.Decimal) error {
	existing, err := uow.SubmissionRepository().GetByParticipation(ctx, participation.ID)
	if err != nil {
		return fmt.Errorf("failed to look up points action for participation %d: %w", participation.ID, err)
	}

	if existing == nil {
		submission := &models.Submission{
			Kind:            models.SubmissionKindGuildFightPoints,
			AccountID:       participation.AccountID,
			ManagerID:       fight.ManagerID,
			Accepted:        true,
			Decided:         true,
			Points:          points,
			ManagerNote:     guildFightNote,
			ParticipationID: &participation.ID,
		}
		if err := uow.SubmissionRepository().Create(ctx, submission); err != nil {
			return fmt.Errorf("failed to create points action: %w", err)
		}

		change := SubmissionChange{Op: ChangeOpCreate, After: submission}
		return s.ledger.HandleSubmissionChange(ctx, uow, change)
	}

	before := *existing
	existing.Points = points
	existing.ManagerNote = guildFightNote
	if err := uow.SubmissionRepository().Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update points action: %w", err)
	}

	change := SubmissionChange{Op: ChangeOpUpdate, Before: &before, After: existing}
	return s.ledger.HandleSubmissionChange(ctx, uow, change)
}

// revert deletes every points action tied to the fight's participations.
// Deletes recompute the affected accounts but emit no notification.
func (s *guildFightService) revert(ctx context.Context, uow UnitOfWork, detail *models.GuildFightDetail) error {
	actions, err := uow.SubmissionRepository().ListByFight(ctx, detail.Fight.ID)
	if err != nil {
		return fmt.Errorf("failed to list points actions for fight %d: %w", detail.Fight.ID, err)
	}

	log.WithFields(log.Fields{
		"fightID":     detail.Fight.ID,
		"actionCount": len(actions),
	}).Info("Reverting guild fight points actions")

	for _, action := range actions {
		if err := uow.SubmissionRepository().Delete(ctx, action.ID); err != nil {
			return fmt.Errorf("failed to delete points action %d: %w", action.ID, err)
		}

		change := SubmissionChange{Op: ChangeOpDelete, Before: action}
		if err := s.ledger.HandleSubmissionChange(ctx, uow, change); err != nil {
			return err
		}
	}

	return nil
}
