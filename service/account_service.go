package service

import (
	"context"
	"fmt"

	"clanledger/models"

	log "github.com/sirupsen/logrus"
)

type accountService struct {
	uowFactory  UnitOfWorkFactory
	startingElo float64
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, startingElo float64) AccountService {
	return &accountService{
		uowFactory:  uowFactory,
		startingElo: startingElo,
	}
}

// GetOrCreateAccount retrieves an existing account or creates a new one with
// the starting Elo rating
func (s *accountService) GetOrCreateAccount(ctx context.Context, userID int64) (*models.PointsAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.PointsAccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, err = uow.PointsAccountRepository().Create(ctx, userID, s.startingElo)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"accountID": account.ID,
	}).Info("Created points account")

	return account, nil
}

// GetAccount retrieves a user's account, failing when it does not exist
func (s *accountService) GetAccount(ctx context.Context, userID int64) (*models.PointsAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.PointsAccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account for user %d not found", userID)
	}

	return account, nil
}
