package credentials

import (
	"maps"
	"sync"
)

// Session is an authenticated cloud session handle. The store treats it
// as opaque; the cloud package provides the concrete implementation.
type Session interface {
	// OwnerID returns the account owner identifier the session was
	// authenticated for.
	OwnerID() string
}

// entry is one cached account: its live session, the login snapshot
// that produced it, and the per-address credential table.
type entry struct {
	session     Session
	login       Data
	credentials map[string]Data
}

// Store is the process-wide credential cache, keyed by derived login
// context key. Entries are never removed during the process lifetime,
// only replaced (session, login snapshot) or merged into (credentials).
//
// Thread Safety:
//   - All methods are safe for concurrent use. Mutation goes through
//     UpsertLogin and Fill only; accessors return defensive copies.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore creates an empty credential store. One store instance is
// created at process start and shared by all resolvers.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
	}
}

// Has reports whether an entry exists for the key.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// UpsertLogin creates or updates the entry for key with a fresh session
// and login snapshot. An existing entry keeps its already-discovered
// credentials; only the session handle and login snapshot are replaced.
func (s *Store) UpsertLogin(key string, session Session, login Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.entries[key] = &entry{
			session:     session,
			login:       maps.Clone(login),
			credentials: make(map[string]Data),
		}
		return
	}
	e.session = session
	e.login = maps.Clone(login)
}

// Fill merges a fetched credential table into the entry for key.
//
// The merge is monotonic: addresses already present are replaced with
// the fresher record, addresses not in creds are kept untouched.
// Filling a non-existent key is a no-op (a fill only makes sense after
// a successful login created the entry).
func (s *Store) Fill(key string, creds map[string]Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return
	}
	for address, record := range creds {
		e.credentials[address] = maps.Clone(record)
	}
}

// Session returns the session handle for key, if the entry exists and
// a login has succeeded for it.
func (s *Store) Session(key string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.session == nil {
		return nil, false
	}
	return e.session, true
}

// Login returns a copy of the login snapshot for key.
func (s *Store) Login(key string) (Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return maps.Clone(e.login), true
}

// Credentials returns a copy of the credential record for address under
// key, if present.
func (s *Store) Credentials(key string, address string) (Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	record, ok := e.credentials[address]
	if !ok {
		return nil, false
	}
	return maps.Clone(record), true
}

// CredentialCount returns the number of addresses cached under key.
// Returns 0 for a missing entry.
func (s *Store) CredentialCount(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return 0
	}
	return len(e.credentials)
}

// FindKeyForAddress scans all entries for one whose credential table
// contains address and returns its key.
//
// When several accounts have paired the same device, iteration order is
// unspecified and the first match wins. Callers must not depend on a
// particular entry being chosen.
func (s *Store) FindKeyForAddress(address string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, e := range s.entries {
		if _, ok := e.credentials[address]; ok {
			return key, true
		}
	}
	return "", false
}

// FirstLogin returns a copy of the login snapshot of an arbitrary
// entry. Used as a best-effort pre-fill for a new configuration flow;
// which entry is chosen is unspecified.
func (s *Store) FirstLogin() (Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		return maps.Clone(e.login), true
	}
	return nil, false
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
