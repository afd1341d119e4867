package multicheckout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hos-market/storefront-api/pkg/config"
	redisclient "github.com/hos-market/storefront-api/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

// ErrNoPlan means the client has no multi-checkout plan persisted.
var ErrNoPlan = errors.New("no multi-checkout plan")

// ErrPlanDiscarded means a persisted plan existed but was malformed and has
// been dropped. Callers fall back to the single-checkout path; losing the
// plan is preferred over resuming corrupted state.
var ErrPlanDiscarded = fmt.Errorf("malformed plan discarded: %w", ErrNoPlan)

type planKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type planKeyer interface {
	PlanKey(clientKey string) string
}

// Store persists one plan per client key in Redis, TTL-bound.
type Store struct {
	kv    planKV
	keyer planKeyer
	ttl   time.Duration
}

// NewStore constructs a plan store backed by Redis.
func NewStore(client *redisclient.Client, cfg config.CheckoutConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.PlanTTL
	if ttl <= 0 {
		return nil, fmt.Errorf("plan ttl must be positive")
	}
	return &Store{kv: client, keyer: client, ttl: ttl}, nil
}

// Save writes the plan. Called after every successful state transition so an
// abandoned flow resumes at the last completed session boundary.
func (s *Store) Save(ctx context.Context, clientKey string, plan *Plan) error {
	if strings.TrimSpace(clientKey) == "" {
		return fmt.Errorf("client key is required")
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid plan: %w", err)
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return s.kv.Set(ctx, s.keyer.PlanKey(clientKey), string(payload), s.ttl)
}

// Load reads and validates the client's plan. A missing record returns
// ErrNoPlan; an undecodable or invalid record is deleted and reported as
// ErrPlanDiscarded (which also matches ErrNoPlan).
func (s *Store) Load(ctx context.Context, clientKey string) (*Plan, error) {
	if strings.TrimSpace(clientKey) == "" {
		return nil, fmt.Errorf("client key is required")
	}
	key := s.keyer.PlanKey(clientKey)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoPlan
		}
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		_ = s.kv.Del(ctx, key)
		return nil, ErrPlanDiscarded
	}
	if err := plan.Validate(); err != nil {
		_ = s.kv.Del(ctx, key)
		return nil, ErrPlanDiscarded
	}
	return &plan, nil
}

// Delete drops the client's plan.
func (s *Store) Delete(ctx context.Context, clientKey string) error {
	if strings.TrimSpace(clientKey) == "" {
		return fmt.Errorf("client key is required")
	}
	return s.kv.Del(ctx, s.keyer.PlanKey(clientKey))
}
