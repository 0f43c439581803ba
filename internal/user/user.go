// Package user holds staff accounts. Accounts live in a section blob of
// the local store alongside the rest of the state.
package user

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a staff account. PINs are bcrypt-hashed.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	HashedPIN string    `json:"hashed_pin"`
}

// Journal matches state.Journal.
type Journal interface {
	MarkDirty(section string)
}

// Store is an in-memory user registry persisted as one section blob.
type Store struct {
	mu      sync.RWMutex
	users   map[string]User // by username
	journal Journal
	section string
}

func NewStore(journal Journal, section string) *Store {
	return &Store{
		users:   make(map[string]User),
		journal: journal,
		section: section,
	}
}

// Authenticate checks the PIN against the stored hash.
func (s *Store) Authenticate(username, pin string) (User, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPIN), []byte(pin)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Upsert adds or replaces an account, hashing the given PIN.
func (s *Store) Upsert(username, fullName, role, pin string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	u, ok := s.users[username]
	if !ok {
		u = User{ID: uuid.New(), Username: username}
	}
	u.FullName = fullName
	u.Role = role
	u.HashedPIN = string(hash)
	s.users[username] = u
	s.mu.Unlock()

	if s.journal != nil {
		s.journal.MarkDirty(s.section)
	}
	return u, nil
}

// Get returns the account by username.
func (s *Store) Get(username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Snapshot renders the section blob.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.users)
}

// Load replaces the registry from a persisted blob.
func (s *Store) Load(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	users := make(map[string]User)
	if err := json.Unmarshal(data, &users); err != nil {
		return err
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}
