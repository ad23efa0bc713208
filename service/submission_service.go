package service

import (
	"context"
	"fmt"

	"clanledger/models"

	"github.com/shopspring/decimal"
)

type submissionService struct {
	uowFactory UnitOfWorkFactory
	ledger     LedgerService
}

// NewSubmissionService creates a new submission service. All writes run the
// ledger observer inline before their transaction commits.
func NewSubmissionService(uowFactory UnitOfWorkFactory, ledger LedgerService) SubmissionService {
	return &submissionService{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

// SubmitUserPoints creates a player score proof submission
func (s *submissionService) SubmitUserPoints(ctx context.Context, params UserPointParams) (*models.Submission, error) {
	if params.Proof == "" {
		return nil, fmt.Errorf("proof is required")
	}

	submission := &models.Submission{
		Kind:          models.SubmissionKindUserPoint,
		AccountID:     params.AccountID,
		GamemodeID:    &params.GamemodeID,
		TankID:        &params.TankID,
		Score:         params.Score,
		Proof:         params.Proof,
		SubmitterNote: params.SubmitterNote,
	}

	return s.create(ctx, submission)
}

// SubmitEventQuest creates an event quest proof submission
func (s *submissionService) SubmitEventQuest(ctx context.Context, params EventQuestParams) (*models.Submission, error) {
	if params.Proof == "" {
		return nil, fmt.Errorf("proof is required")
	}

	submission := &models.Submission{
		Kind:          models.SubmissionKindEventQuest,
		AccountID:     params.AccountID,
		Proof:         params.Proof,
		SubmitterNote: params.SubmitterNote,
	}

	return s.create(ctx, submission)
}

// SubmitOneOnOne creates a duel result submission
func (s *submissionService) SubmitOneOnOne(ctx context.Context, params OneOnOneParams) (*models.Submission, error) {
	if params.WinnerAccountID == params.LoserAccountID {
		return nil, fmt.Errorf("cannot record a duel against yourself")
	}

	expectedOutcome := params.ExpectedOutcome
	if expectedOutcome == 0 {
		expectedOutcome = 0.5
	}

	submission := &models.Submission{
		Kind:            models.SubmissionKindOneOnOne,
		AccountID:       params.WinnerAccountID,
		LoserAccountID:  &params.LoserAccountID,
		Proof:           params.Proof,
		Points:          params.Points,
		PointsLoser:     params.PointsLoser,
		ExpectedOutcome: expectedOutcome,
	}

	return s.create(ctx, submission)
}

// GrantManagerPoints creates a manager action that counts immediately
func (s *submissionService) GrantManagerPoints(ctx context.Context, accountID, managerID int64, points decimal.Decimal, note string) (*models.Submission, error) {
	submission := &models.Submission{
		Kind:        models.SubmissionKindManagerAction,
		AccountID:   accountID,
		ManagerID:   &managerID,
		Accepted:    true,
		Decided:     true,
		Points:      points,
		ManagerNote: note,
	}

	return s.create(ctx, submission)
}

// create persists a new submission and runs the ledger observer on it
func (s *submissionService) create(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SubmissionRepository().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	change := SubmissionChange{Op: ChangeOpCreate, After: submission}
	if err := s.ledger.HandleSubmissionChange(ctx, uow, change); err != nil {
		return nil, fmt.Errorf("failed to process submission change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return submission, nil
}

// DecideSubmission records a manager verdict on a submission
func (s *submissionService) DecideSubmission(ctx context.Context, id, managerID int64, accept bool, points decimal.Decimal, note string) (*models.Submission, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	submission, err := uow.SubmissionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, fmt.Errorf("submission not found")
	}

	before := *submission
	submission.Decided = true
	submission.Accepted = accept
	submission.ManagerID = &managerID
	submission.ManagerNote = note
	if accept {
		submission.Points = points
	}

	if err := uow.SubmissionRepository().Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	change := SubmissionChange{Op: ChangeOpUpdate, Before: &before, After: submission}
	if err := s.ledger.HandleSubmissionChange(ctx, uow, change); err != nil {
		return nil, fmt.Errorf("failed to process submission change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return submission, nil
}

// RevertSubmission rolls back a previously-settled submission. The record
// stays; recomputation excludes its effect from here on.
func (s *submissionService) RevertSubmission(ctx context.Context, id, managerID int64) (*models.Submission, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	submission, err := uow.SubmissionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, fmt.Errorf("submission not found")
	}
	if !submission.Decided {
		return nil, fmt.Errorf("cannot revert an undecided submission")
	}

	before := *submission
	submission.Reverted = true
	submission.ManagerID = &managerID

	if err := uow.SubmissionRepository().Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	change := SubmissionChange{Op: ChangeOpUpdate, Before: &before, After: submission}
	if err := s.ledger.HandleSubmissionChange(ctx, uow, change); err != nil {
		return nil, fmt.Errorf("failed to process submission change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return submission, nil
}

// DeleteSubmission hard-deletes a submission; only recomputation runs, no
// notification is emitted.
func (s *submissionService) DeleteSubmission(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	submission, err := uow.SubmissionRepository().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return fmt.Errorf("submission not found")
	}

	if err := uow.SubmissionRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	change := SubmissionChange{Op: ChangeOpDelete, Before: submission}
	if err := s.ledger.HandleSubmissionChange(ctx, uow, change); err != nil {
		return fmt.Errorf("failed to process submission change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSubmission retrieves a submission by ID
func (s *submissionService) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	submission, err := uow.SubmissionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return submission, nil
}
