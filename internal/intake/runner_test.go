package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/patient-intake-scheduling/internal/extract"
	"github.com/hackgods/patient-intake-scheduling/internal/observability/metrics"
	redisclient "github.com/hackgods/patient-intake-scheduling/internal/redis"
)

type memoryStore struct {
	mu      sync.Mutex
	states  map[string]State
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]State)}
}

func (s *memoryStore) Load(ctx context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return &st, nil
}

func (s *memoryStore) Save(ctx context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.states[st.ConversationID] = *st
	return nil
}

type runnerFixture struct {
	*fixture
	store    *memoryStore
	mr       *miniredis.Miniredis
	registry *prometheus.Registry
	runner   *Runner
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	f := newFixture()
	store := newMemoryStore()
	runner := NewRunner(f.machine, store, redisclient.NewRedisLocker(client, 5*time.Second), metrics.NewIntakeMetrics(reg), nil)
	runner.newID = func() string { return "conv-1" }

	return &runnerFixture{fixture: f, store: store, mr: mr, registry: reg, runner: runner}
}

func (f *runnerFixture) turns(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "intake_conversation_turns_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunner_StartAndConverse(t *testing.T) {
	f := newRunnerFixture(t)
	f.extractor.info = []extract.PatientInfo{{}, completeInfo}
	ctx := context.Background()

	st, err := f.runner.Start(ctx, "  Hello  ")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", st.ConversationID)
	assert.Equal(t, StageGreeting, st.Stage)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "Hello", st.Messages[0].Content)

	st, err = f.runner.Converse(ctx, "conv-1", "John Smith, 1980-04-12, Dr. Evelyn Reed, Downtown")
	require.NoError(t, err)
	assert.Equal(t, StageInformationConfirmation, st.Stage)
	assert.Len(t, st.Messages, 4)

	saved, err := f.runner.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, st.Messages, saved.Messages)
	assert.Equal(t, completeInfo, saved.PatientInfo)
	assert.False(t, f.mr.Exists(redisclient.ConversationLockKey("conv-1")))
	assert.Equal(t, float64(2), f.turns(t, "ok"))
}

func TestRunner_UnknownConversation(t *testing.T) {
	f := newRunnerFixture(t)

	_, err := f.runner.Converse(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.Equal(t, float64(1), f.turns(t, "error"))
}

func TestRunner_EmptyMessage(t *testing.T) {
	f := newRunnerFixture(t)

	_, err := f.runner.Start(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.store.states)
}

func TestRunner_BusyConversation(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	_, err := f.runner.Start(ctx, "Hi")
	require.NoError(t, err)

	require.NoError(t, f.mr.Set(redisclient.ConversationLockKey("conv-1"), "another-turn"))

	_, err = f.runner.Converse(ctx, "conv-1", "John Smith")
	assert.ErrorIs(t, err, ErrConversationBusy)
	assert.Equal(t, float64(1), f.turns(t, "busy"))

	saved, err := f.runner.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Len(t, saved.Messages, 2, "rejected turn must not touch the stored conversation")
}

func TestRunner_RecoveredTurnIsSaved(t *testing.T) {
	f := newRunnerFixture(t)
	f.extractor.infoErr = errors.New("model unavailable")

	st, err := f.runner.Start(context.Background(), "I'm John Smith")
	require.NoError(t, err)
	assert.Equal(t, genericErrorMessage, lastAssistant(st))
	assert.Equal(t, StageGreeting, st.Stage)
	assert.Contains(t, f.store.states, "conv-1")
	assert.Equal(t, float64(1), f.turns(t, "recovered"))
}

func TestRunner_SaveFailure(t *testing.T) {
	f := newRunnerFixture(t)
	f.store.saveErr = errors.New("redis down")

	_, err := f.runner.Start(context.Background(), "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save conversation")
}
