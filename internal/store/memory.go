package store

import (
	"context"
	"sync"

	"github.com/alkaman93/orgazm/internal/domain"
)

// MemoryStore is an in-memory Repository used in tests and local runs
// without a database file. Ids are assigned per kind, strictly increasing.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	requests map[domain.Kind][]*domain.Request
	nextID   map[domain.Kind]int64
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*domain.User),
		requests: make(map[domain.Kind][]*domain.Request),
		nextID:   make(map[domain.Kind]int64),
	}
}

// UpsertUser creates a user record on first contact.
func (m *MemoryStore) UpsertUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		u := *user
		m.users[user.ID] = &u
		return nil
	}
	if existing.Username == "" {
		existing.Username = user.Username
	}
	if existing.FirstName == "" {
		existing.FirstName = user.FirstName
	}
	return nil
}

// CountUsers returns the number of registered users.
func (m *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// InsertRequest persists a new request and returns its assigned id.
func (m *MemoryStore) InsertRequest(_ context.Context, req *domain.Request) (int64, error) {
	if _, err := table(req.Kind); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID[req.Kind]++
	r := *req
	r.ID = m.nextID[req.Kind]
	r.Status = domain.StatusPending
	m.requests[req.Kind] = append(m.requests[req.Kind], &r)
	return r.ID, nil
}

func (m *MemoryStore) find(kind domain.Kind, id int64) *domain.Request {
	for _, r := range m.requests[kind] {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// GetRequest retrieves a request by kind and id.
func (m *MemoryStore) GetRequest(_ context.Context, kind domain.Kind, id int64) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.find(kind, id)
	if r == nil {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListPending returns all pending requests of the given kind, newest id first.
func (m *MemoryStore) ListPending(_ context.Context, kind domain.Kind) ([]*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Request
	rs := m.requests[kind]
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].Status == domain.StatusPending {
			cp := *rs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CountPending returns the number of pending requests of the given kind.
func (m *MemoryStore) CountPending(_ context.Context, kind domain.Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, r := range m.requests[kind] {
		if r.Status == domain.StatusPending {
			n++
		}
	}
	return n, nil
}

// AnswerRequest transitions a pending request to a terminal status.
func (m *MemoryStore) AnswerRequest(_ context.Context, kind domain.Kind, id int64, status domain.Status, response string) error {
	if !status.Terminal() {
		return errNonTerminal(status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.find(kind, id)
	if r == nil {
		return ErrNotFound
	}
	if r.Status != domain.StatusPending {
		return ErrAlreadyHandled
	}
	r.Status = status
	r.OperatorResponse = response
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
