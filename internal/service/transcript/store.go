// Package transcript persists the chat transcript under a single durable key.
// The whole transcript is encoded as one JSON array and rewritten on every
// append.
package transcript

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/cureverse/cureverse/internal/model/chat"
	"github.com/cureverse/cureverse/internal/storage"
)

// DefaultKey is the storage key used when no session qualifier is configured.
const DefaultKey = "cureverse_chat_history"

// ErrCorrupt is returned by LoadAll when the persisted value cannot be parsed.
var ErrCorrupt = errors.New("transcript: corrupt persisted state")

// Key returns the storage key for a session. An empty session yields base.
func Key(base, session string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultKey
	}
	session = strings.TrimSpace(session)
	if session == "" {
		return base
	}
	return base + ":" + session
}

// Store is the durable backing of one transcript.
type Store struct {
	backend storage.Backend
	key     string

	mu     sync.Mutex
	cache  []chat.Message
	loaded bool
}

// New returns a Store writing to key on backend.
func New(backend storage.Backend, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Store{backend: backend, key: key}
}

// Key returns the storage key of the store.
func (s *Store) Key() string { return s.key }

// Append adds msg and flushes the full transcript to the backend.
func (s *Store) Append(ctx context.Context, msg chat.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		existing, err := s.read(ctx)
		if err != nil {
			return err
		}
		s.cache = existing
		s.loaded = true
	}

	next := append(append([]chat.Message(nil), s.cache...), msg)
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.cache = next
	return nil
}

// LoadAll returns every persisted message in order. It returns nil, nil when
// nothing has been stored.
func (s *Store) LoadAll(ctx context.Context) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	s.cache = msgs
	s.loaded = true
	if len(msgs) == 0 {
		return nil, nil
	}
	return append([]chat.Message(nil), msgs...), nil
}

// Clear removes the persisted transcript.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return errors.Wrap(err, "transcript: clear")
	}
	s.cache = nil
	s.loaded = true
	return nil
}

func (s *Store) read(ctx context.Context) ([]chat.Message, error) {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "transcript: load")
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var msgs []chat.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", s.key, err)
	}
	return msgs, nil
}

func (s *Store) write(ctx context.Context, msgs []chat.Message) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return errors.Wrap(err, "transcript: encode")
	}
	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		return errors.Wrap(err, "transcript: persist")
	}
	return nil
}
