package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamify/connect/internal/friends"
	"github.com/streamify/connect/internal/models"
)

// MemoryStore is an in-process reference implementation of
// friends.ConnectionStore, used by tests and local development. All
// operations run under one mutex, so the duplicate-request check and the
// create are atomic with respect to each other.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	requests map[uuid.UUID]*models.FriendRequest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		requests: make(map[uuid.UUID]*models.FriendRequest),
	}
}

// PutUser inserts or replaces a user record.
func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = &u
}

// DeleteUser removes a user. Peers' friend lists are left untouched so
// tests can exercise the dangling-reference filter in the engine.
func (s *MemoryStore) DeleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, friends.ErrUserNotFound
	}
	cp := *u
	cp.Friends = append([]uuid.UUID(nil), u.Friends...)
	return &cp, nil
}

func (s *MemoryStore) QueryUsers(ctx context.Context, filter friends.UserFilter) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if filter.Excludes(u.ID) {
			continue
		}
		if filter.OnboardedOnly && !u.IsOnboarded {
			continue
		}
		cp := *u
		cp.Friends = append([]uuid.UUID(nil), u.Friends...)
		out = append(out, cp)
	}
	return out, nil
}

// AddFriendLink adds each user to the other's friend list. Idempotent:
// an already-present edge is left alone.
func (s *MemoryStore) AddFriendLink(ctx context.Context, a, b uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ua, ok := s.users[a]
	if !ok {
		return friends.ErrUserNotFound
	}
	ub, ok := s.users[b]
	if !ok {
		return friends.ErrUserNotFound
	}
	if !ua.HasFriend(b) {
		ua.Friends = append(ua.Friends, b)
	}
	if !ub.HasFriend(a) {
		ub.Friends = append(ub.Friends, a)
	}
	return nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, friends.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findBetweenLocked(a, b)
	if r == nil {
		return nil, friends.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) findBetweenLocked(a, b uuid.UUID) *models.FriendRequest {
	for _, r := range s.requests {
		if (r.Sender == a && r.Recipient == b) || (r.Sender == b && r.Recipient == a) {
			return r
		}
	}
	return nil
}

func (s *MemoryStore) RequestsByRecipient(ctx context.Context, recipient uuid.UUID, status models.RequestStatus) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.Recipient == recipient && r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) RequestsBySender(ctx context.Context, sender uuid.UUID, status models.RequestStatus) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.Sender == sender && r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

// CreateRequest checks pair uniqueness and inserts under the same lock,
// mirroring the unique-index guarantee of the Postgres store.
func (s *MemoryStore) CreateRequest(ctx context.Context, sender, recipient uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findBetweenLocked(sender, recipient) != nil {
		return nil, friends.ErrRequestExists
	}
	r := &models.FriendRequest{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Status:    models.RequestPending,
		CreatedAt: time.Now(),
	}
	s.requests[r.ID] = r
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return friends.ErrRequestNotFound
	}
	r.Status = status
	return nil
}
