package events

import (
	"context"
	"sync"

	"clanledger/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeSubmissionReverted      EventType = "submission_reverted"
	EventTypeNewUserPointSubmission  EventType = "new_user_point_submission"
	EventTypeNewGuildFightPoints     EventType = "new_guild_fight_points"
	EventTypeNewManagerSubmission    EventType = "new_manager_submission"
	EventTypeNewOneOnOneSubmission   EventType = "new_one_on_one_submission"
	EventTypeNewEventQuestSubmission EventType = "new_event_quest_submission"
	EventTypeNewGenericSubmission    EventType = "new_generic_submission"
	EventTypeNewGuildFight           EventType = "new_guild_fight"
	EventTypeGuildFightResults       EventType = "guild_fight_results"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// SubmissionRevertedEvent fires when a previously-settled submission is
// rolled back, regardless of its variant.
type SubmissionRevertedEvent struct {
	Submission *models.Submission
}

func (e SubmissionRevertedEvent) Type() EventType {
	return EventTypeSubmissionReverted
}

// NewUserPointSubmissionEvent fires when a player score proof is created or
// updated.
type NewUserPointSubmissionEvent struct {
	Submission *models.Submission
	Accepted   bool
	Decided    bool
}

func (e NewUserPointSubmissionEvent) Type() EventType {
	return EventTypeNewUserPointSubmission
}

// NewGuildFightPointsEvent fires when a synthesized guild fight points
// action is created or updated.
type NewGuildFightPointsEvent struct {
	Submission *models.Submission
	Accepted   bool
}

func (e NewGuildFightPointsEvent) Type() EventType {
	return EventTypeNewGuildFightPoints
}

// NewManagerSubmissionEvent fires when a manager grants points directly.
type NewManagerSubmissionEvent struct {
	Submission *models.Submission
	Accepted   bool
}

func (e NewManagerSubmissionEvent) Type() EventType {
	return EventTypeNewManagerSubmission
}

// NewOneOnOneSubmissionEvent fires when a duel result is created or updated.
type NewOneOnOneSubmissionEvent struct {
	Submission *models.Submission
	Accepted   bool
	Decided    bool
}

func (e NewOneOnOneSubmissionEvent) Type() EventType {
	return EventTypeNewOneOnOneSubmission
}

// NewEventQuestSubmissionEvent fires when an event quest proof is created
// or updated.
type NewEventQuestSubmissionEvent struct {
	Submission *models.Submission
	Accepted   bool
	Decided    bool
}

func (e NewEventQuestSubmissionEvent) Type() EventType {
	return EventTypeNewEventQuestSubmission
}

// NewGenericSubmissionEvent is the catch-all for submissions matching no
// known variant.
type NewGenericSubmissionEvent struct {
	Submission *models.Submission
	Accepted   bool
	Decided    bool
}

func (e NewGenericSubmissionEvent) Type() EventType {
	return EventTypeNewGenericSubmission
}

// NewGuildFightEvent fires when a guild fight is created.
type NewGuildFightEvent struct {
	Fight *models.GuildFight
}

func (e NewGuildFightEvent) Type() EventType {
	return EventTypeNewGuildFight
}

// GuildFightResultsEvent fires when a guild fight concludes.
type GuildFightResultsEvent struct {
	Fight *models.GuildFight
}

func (e GuildFightResultsEvent) Type() EventType {
	return EventTypeGuildFightResults
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so notification delivery can never block
	// or fail the recomputation path
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Use background context for event emission to avoid issues with
	// transaction context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
