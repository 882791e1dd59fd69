// Package session owns the chat session identifier: the token that ties this
// client to a server-side conversation. The id is created on first use, kept
// across restarts and replaced only on explicit rotation.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mrdoc/internal/logger"
	"mrdoc/internal/testutils"
)

// Key is the KV entry holding the session id.
const Key = "chatbot_session_id"

// randomLength is the length of the random suffix of a session id.
const randomLength = 9

// Store persists the session identifier in a KV.
type Store struct {
	kv  KV
	gen testutils.Generators
}

// NewStore creates a Store over kv using gen for timestamps and randomness.
func NewStore(kv KV, gen testutils.Generators) *Store {
	return &Store{kv: kv, gen: gen}
}

// NewID generates a session id of the form session_<unix millis>_<9 alphanumerics>.
func (s *Store) NewID() string {
	millis := s.gen.Now().UnixMilli()
	return "session_" + strconv.FormatInt(millis, 10) + "_" + s.gen.Alphanumeric(randomLength)
}

// Current returns the persisted id, or "" when none exists.
func (s *Store) Current(ctx context.Context) (string, error) {
	id, err := s.kv.Get(ctx, Key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session id: %w", err)
	}
	return id, nil
}

// GetOrCreate returns the persisted id, generating and persisting one first if
// there is none. Repeated calls return the same id until Rotate.
func (s *Store) GetOrCreate(ctx context.Context) (string, error) {
	id, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = s.NewID()
	if err := s.kv.Set(ctx, Key, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	logger.SessionOperation("create", id)
	return id, nil
}

// Rotate discards the persisted id and persists a new one. The previous
// conversation stays on the server; only this store forgets it.
func (s *Store) Rotate(ctx context.Context) (string, error) {
	previous, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	if err := s.kv.Delete(ctx, Key); err != nil {
		return "", fmt.Errorf("discard session id: %w", err)
	}

	id := s.NewID()
	for id == previous {
		id = s.NewID()
	}
	if err := s.kv.Set(ctx, Key, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	logger.SessionOperation("rotate", id)
	return id, nil
}
