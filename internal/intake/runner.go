package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/patient-intake-scheduling/internal/observability/metrics"
	redisclient "github.com/hackgods/patient-intake-scheduling/internal/redis"
	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationBusy     = errors.New("conversation is processing another message, please retry")
	ErrEmptyMessage         = errors.New("message is empty")
)

// Store persists conversation state between turns. Load returns
// ErrConversationNotFound for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, conversationID string) (*State, error)
	Save(ctx context.Context, st *State) error
}

// Runner processes one user turn at a time per conversation. Turns for the
// same conversation are serialised through the locker; a second concurrent
// turn is rejected with ErrConversationBusy rather than queued.
type Runner struct {
	machine *Machine
	store   Store
	locker  redisclient.Locker
	metrics *metrics.IntakeMetrics
	logger  *logging.Logger
	now     func() time.Time
	newID   func() string
}

func NewRunner(machine *Machine, store Store, locker redisclient.Locker, m *metrics.IntakeMetrics, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		machine: machine,
		store:   store,
		locker:  locker,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Start opens a new conversation with its first user message.
func (r *Runner) Start(ctx context.Context, text string) (*State, error) {
	return r.turn(ctx, r.newID(), text, true)
}

// Converse adds a user message to an existing conversation and advances it.
func (r *Runner) Converse(ctx context.Context, conversationID, text string) (*State, error) {
	return r.turn(ctx, conversationID, text, false)
}

func (r *Runner) Get(ctx context.Context, conversationID string) (*State, error) {
	return r.store.Load(ctx, conversationID)
}

func (r *Runner) turn(ctx context.Context, conversationID, text string, create bool) (*State, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	started := r.now()
	outcome := "ok"
	var result *State

	err := r.locker.WithLock(ctx, redisclient.ConversationLockKey(conversationID), func(lockCtx context.Context) error {
		var st *State
		if create {
			st = NewState(conversationID, started)
		} else {
			loaded, err := r.store.Load(lockCtx, conversationID)
			if err != nil {
				return err
			}
			st = loaded
		}

		st.AddUser(text)

		if err := r.machine.Advance(lockCtx, st); err != nil {
			if !errors.Is(err, ErrStageFailed) {
				return err
			}
			outcome = "recovered"
		}

		st.UpdatedAt = r.now()
		if err := r.store.Save(lockCtx, st); err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}

		result = st
		return nil
	})

	if err != nil {
		outcome = "error"
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			outcome = "busy"
			err = ErrConversationBusy
		}
	}
	r.metrics.ObserveTurn(outcome, r.now().Sub(started).Seconds())

	if err != nil {
		if !errors.Is(err, ErrConversationNotFound) && !errors.Is(err, ErrConversationBusy) {
			r.logger.Error("conversation turn failed", "conversation_id", conversationID, "error", err)
		}
		return nil, err
	}

	r.logger.Info("conversation turn processed",
		"conversation_id", conversationID,
		"stage", result.Stage,
		"outcome", outcome,
		"messages", len(result.Messages),
	)
	return result, nil
}
