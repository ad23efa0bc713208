package service

import (
	"context"
	"fmt"

	"clanledger/models"
)

type questService struct {
	uowFactory UnitOfWorkFactory
}

// NewQuestService creates a new quest service
func NewQuestService(uowFactory UnitOfWorkFactory) QuestService {
	return &questService{
		uowFactory: uowFactory,
	}
}

// DailyQuestFor returns the quest whose 24h window contains the submission's
// timestamp, preferring the latest such quest. Returns nil when no quest
// window covers it.
func (s *questService) DailyQuestFor(ctx context.Context, submission *models.Submission) (*models.DailyQuest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	quest, err := uow.DailyQuestRepository().GetActiveAt(ctx, submission.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to look up daily quest: %w", err)
	}

	return quest, nil
}
