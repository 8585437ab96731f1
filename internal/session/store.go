// Package session keeps intake conversation state in Redis between turns.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hackgods/patient-intake-scheduling/internal/intake"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore stores each conversation as one JSON value that expires ttl
// after its last turn.
func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("intake.internal.session")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl, tracer: tracer}
}

func (s *RedisStore) Save(ctx context.Context, st *intake.State) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()
	span.SetAttributes(
		attribute.String("intake.conversation_id", st.ConversationID),
		attribute.String("intake.stage", string(st.Stage)),
	)

	data, err := json.Marshal(st)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: marshal state: %w", err)
	}
	if err := s.client.Set(ctx, conversationKey(st.ConversationID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: persist state: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, conversationID string) (*intake.State, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()
	span.SetAttributes(attribute.String("intake.conversation_id", conversationID))

	data, err := s.client.Get(ctx, conversationKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, intake.ErrConversationNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: load state: %w", err)
	}

	var st intake.State
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: decode state: %w", err)
	}
	return &st, nil
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}
