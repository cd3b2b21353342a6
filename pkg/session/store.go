package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/inspection-idm/pkg/kvstore"
)

const keyPrefix = "session:"

var ErrSessionNotFound = errors.New("session not found")

// Store keeps claims server side under random session ids.
type Store struct {
	kv  kvstore.Store
	ttl time.Duration
}

func NewStore(kv kvstore.Store, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Create(ctx context.Context, c Claims) (string, error) {
	if c.Empty() {
		return "", errors.New("session: empty claims")
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}
	id := uuid.NewString()
	if err := s.kv.Set(ctx, keyPrefix+id, string(raw), s.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Claims, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Claims{}, ErrSessionNotFound
	}
	raw, err := s.kv.Get(ctx, keyPrefix+id)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Claims{}, ErrSessionNotFound
	}
	if err != nil {
		return Claims{}, fmt.Errorf("load session: %w", err)
	}
	var c Claims
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Claims{}, fmt.Errorf("decode claims: %w", err)
	}
	return c, nil
}

func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
