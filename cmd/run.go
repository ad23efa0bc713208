package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"clanledger/config"
	"clanledger/database"
	"clanledger/events"
	"clanledger/repository"
	"clanledger/service"
	"clanledger/webhook"
)

// Services aggregates the ledger's service layer for embedding callers.
type Services struct {
	Accounts    service.AccountService
	Submissions service.SubmissionService
	GuildFights service.GuildFightService
	Quests      service.QuestService
	EventBus    *events.Bus
}

// Initialize wires the database, event bus, unit of work factory and the
// service layer. The returned cleanup function closes the database pool.
func Initialize(ctx context.Context, cfg *config.Config) (*Services, func(), error) {
	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	ledgerService := service.NewLedgerService(cfg.EloK, cfg.IdempotentEloReversal)
	services := &Services{
		Accounts:    service.NewAccountService(uowFactory, cfg.StartingElo),
		Submissions: service.NewSubmissionService(uowFactory, ledgerService),
		GuildFights: service.NewGuildFightService(uowFactory, ledgerService),
		Quests:      service.NewQuestService(uowFactory),
		EventBus:    eventBus,
	}
	log.Println("Services initialized successfully")

	// Register the Discord webhook notifier when configured
	if cfg.WebhookID != "" && cfg.WebhookToken != "" {
		notifier, err := webhook.NewNotifier(cfg.WebhookID, cfg.WebhookToken)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize webhook notifier: %w", err)
		}
		notifier.Register(eventBus)
	} else {
		log.Println("No webhook configured, event notifications disabled")
	}

	cleanup := func() {
		log.Println("Closing database connection...")
		db.Close()
	}
	return services, cleanup, nil
}

// Run initializes the application and blocks until the context is cancelled.
func Run(ctx context.Context) error {
	log.Println("Starting clan ledger...")

	cfg := config.Get()

	_, cleanup, err := Initialize(ctx, cfg)
	if err != nil {
		return err
	}

	// Wait for context cancellation
	log.Printf("Clan ledger is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cleanup()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
