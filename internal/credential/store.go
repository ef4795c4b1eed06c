// Package credential owns per-provider secrets. A credential has two
// independent facts: the in-memory value entered this session and the
// persisted flag reported by the backend. The flag can be true while the
// value is empty, meaning a stored credential exists but was not re-entered.
package credential

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/daikw/voxflow/internal/backend"
	"github.com/daikw/voxflow/internal/fault"
	"github.com/daikw/voxflow/internal/provider"
)

// Store holds credentials in memory and mediates provider activation.
type Store struct {
	backend *backend.Client

	mu        sync.Mutex
	values    map[provider.ID]string
	persisted map[provider.ID]bool
}

// NewStore creates an empty credential store backed by client.
func NewStore(client *backend.Client) *Store {
	return &Store{
		backend:   client,
		values:    make(map[provider.ID]string),
		persisted: make(map[provider.ID]bool),
	}
}

// Set replaces the in-memory credential for id. The persisted flag is not
// affected.
func (s *Store) Set(id provider.ID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = value
}

// Value returns the in-memory credential for id, possibly empty.
func (s *Store) Value(id provider.ID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[id]
}

// Persisted reports whether the backend holds a durable credential for id.
func (s *Store) Persisted(id provider.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted[id]
}

// ActivationRequest disambiguates the two meanings an empty credential used
// to overload: ReuseStored explicitly asks the backend to keep using its
// stored credential instead of whatever is in memory.
type ActivationRequest struct {
	Provider    provider.ID
	Persist     bool
	ReuseStored bool
}

// Activate makes req.Provider the backend's active service, sending the
// in-memory credential unless ReuseStored is set. On success the persisted
// flag flips true when a non-empty credential was sent with Persist.
func (s *Store) Activate(ctx context.Context, req ActivationRequest) error {
	desc, err := provider.Describe(req.Provider)
	if err != nil {
		return err
	}

	key := ""
	if desc.RequiresCredential && !req.ReuseStored {
		key = s.Value(req.Provider)
	}

	err = s.backend.SetService(ctx, backend.SetServiceRequest{
		Service:   string(req.Provider),
		APIKey:    key,
		SaveToEnv: req.Persist,
	})
	if err != nil {
		return err
	}

	if req.Persist && key != "" {
		s.mu.Lock()
		s.persisted[req.Provider] = true
		s.mu.Unlock()
	}

	log.Debug().Str("provider", string(req.Provider)).Bool("reuse_stored", req.ReuseStored).Msg("Provider activated")
	return nil
}

// ClearPersisted deletes the backend's durable credential for id and drops
// the in-memory value. Clearing a provider with no stored credential is a
// no-op, not an error.
func (s *Store) ClearPersisted(ctx context.Context, id provider.ID) error {
	if _, err := provider.Describe(id); err != nil {
		return err
	}

	s.mu.Lock()
	stored := s.persisted[id]
	s.mu.Unlock()

	if !stored {
		return nil
	}

	if err := s.backend.ClearKey(ctx, string(id)); err != nil {
		return err
	}

	s.mu.Lock()
	s.persisted[id] = false
	delete(s.values, id)
	s.mu.Unlock()

	log.Debug().Str("provider", string(id)).Msg("Persisted credential cleared")
	return nil
}

// Refresh replaces the persisted flags wholesale with the backend's view.
func (s *Store) Refresh(ctx context.Context) error {
	status, err := s.backend.KeyStatus(ctx)
	if err != nil {
		return fault.Wrap(fault.KindTransport, "refresh", "failed to fetch key status", err)
	}

	fresh := make(map[provider.ID]bool, len(status))
	for name, stored := range status {
		fresh[provider.ID(name)] = stored
	}

	s.mu.Lock()
	s.persisted = fresh
	s.mu.Unlock()

	return nil
}
