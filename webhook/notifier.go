// Package webhook delivers ledger events to a Discord webhook. Delivery is
// best-effort: failures are logged and never propagate back into the
// recomputation path.
package webhook

import (
	"context"
	"fmt"

	"clanledger/events"
	"clanledger/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Notifier posts ledger events to a single Discord webhook.
type Notifier struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
}

// NewNotifier creates a notifier for the given webhook. Webhook execution
// needs no bot token, so the session is unauthenticated.
func NewNotifier(webhookID, webhookToken string) (*Notifier, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Notifier{
		session:      session,
		webhookID:    webhookID,
		webhookToken: webhookToken,
	}, nil
}

// Register subscribes the notifier to every ledger event type on the bus.
// This is the single registration call made during system initialization.
func (n *Notifier) Register(bus *events.Bus) {
	eventTypes := []events.EventType{
		events.EventTypeSubmissionReverted,
		events.EventTypeNewUserPointSubmission,
		events.EventTypeNewGuildFightPoints,
		events.EventTypeNewManagerSubmission,
		events.EventTypeNewOneOnOneSubmission,
		events.EventTypeNewEventQuestSubmission,
		events.EventTypeNewGenericSubmission,
		events.EventTypeNewGuildFight,
		events.EventTypeGuildFightResults,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, n.handleEvent)
	}

	log.WithField("webhookID", n.webhookID).Info("Webhook notifier registered")
}

func (n *Notifier) handleEvent(ctx context.Context, event events.Event) {
	content := formatEvent(event)
	if content == "" {
		return
	}

	_, err := n.session.WebhookExecute(n.webhookID, n.webhookToken, false, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
		}).WithError(err).Error("Failed to deliver webhook notification")
	}
}

func formatEvent(event events.Event) string {
	switch e := event.(type) {
	case events.SubmissionRevertedEvent:
		return fmt.Sprintf("Submission %d for account %d was reverted; its %s points no longer count.",
			e.Submission.ID, e.Submission.AccountID, e.Submission.Points)
	case events.NewUserPointSubmissionEvent:
		return fmt.Sprintf("New score submission %d from account %d (%s).",
			e.Submission.ID, e.Submission.AccountID, verdict(e.Accepted, e.Decided))
	case events.NewGuildFightPointsEvent:
		return fmt.Sprintf("Guild fight points granted: %s points to account %d.",
			e.Submission.Points, e.Submission.AccountID)
	case events.NewManagerSubmissionEvent:
		return fmt.Sprintf("Manager granted %s points to account %d.",
			e.Submission.Points, e.Submission.AccountID)
	case events.NewOneOnOneSubmissionEvent:
		loser := int64(0)
		if e.Submission.LoserAccountID != nil {
			loser = *e.Submission.LoserAccountID
		}
		return fmt.Sprintf("Duel result %d: account %d beat account %d (%s).",
			e.Submission.ID, e.Submission.AccountID, loser, verdict(e.Accepted, e.Decided))
	case events.NewEventQuestSubmissionEvent:
		return fmt.Sprintf("New event quest submission %d from account %d (%s).",
			e.Submission.ID, e.Submission.AccountID, verdict(e.Accepted, e.Decided))
	case events.NewGenericSubmissionEvent:
		return fmt.Sprintf("New submission %d from account %d (%s).",
			e.Submission.ID, e.Submission.AccountID, verdict(e.Accepted, e.Decided))
	case events.NewGuildFightEvent:
		return fmt.Sprintf("A guild fight against %s has started!", e.Fight.Opponent)
	case events.GuildFightResultsEvent:
		return fmt.Sprintf("Guild fight against %s concluded: %s", e.Fight.Opponent, fightOutcome(e.Fight))
	default:
		return ""
	}
}

func verdict(accepted, decided bool) string {
	if !decided {
		return "pending review"
	}
	if accepted {
		return "accepted"
	}
	return "rejected"
}

func fightOutcome(fight *models.GuildFight) string {
	if fight.Status == models.GuildFightStatusDraw {
		return fmt.Sprintf("draw, %s points to every participant.", fight.PointsLoser)
	}
	return fmt.Sprintf("%s points to the winning side, %s to the losing side.",
		fight.PointsWinner, fight.PointsLoser)
}
