package friends

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamify/connect/internal/models"
)

// UserFilter narrows a QueryUsers call. Zero value matches everyone.
type UserFilter struct {
	ExcludeID     uuid.UUID
	ExcludeIDs    []uuid.UUID
	OnboardedOnly bool
}

// Excludes reports whether id is ruled out by the filter's exclusion sets.
func (f UserFilter) Excludes(id uuid.UUID) bool {
	if f.ExcludeID != uuid.Nil && id == f.ExcludeID {
		return true
	}
	for _, x := range f.ExcludeIDs {
		if id == x {
			return true
		}
	}
	return false
}

// ConnectionStore is the persistence boundary the engine runs against.
// Implementations translate their own not-found and uniqueness failures
// into ErrUserNotFound, ErrRequestNotFound and ErrRequestExists, and wrap
// infrastructure failures in ErrStoreUnavailable.
type ConnectionStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	QueryUsers(ctx context.Context, filter UserFilter) ([]models.User, error)

	// AddFriendLink adds each id to the other's friend set as one atomic,
	// idempotent operation. Re-applying an existing link is a no-op.
	AddFriendLink(ctx context.Context, a, b uuid.UUID) error

	GetRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error)

	// FindRequestBetween returns the request between a and b regardless of
	// which side sent it, or ErrRequestNotFound.
	FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendRequest, error)

	RequestsByRecipient(ctx context.Context, recipient uuid.UUID, status models.RequestStatus) ([]models.FriendRequest, error)
	RequestsBySender(ctx context.Context, sender uuid.UUID, status models.RequestStatus) ([]models.FriendRequest, error)

	// CreateRequest persists a new pending request. The store enforces
	// unordered-pair uniqueness: a concurrent create for the same pair
	// fails with ErrRequestExists rather than producing a duplicate.
	CreateRequest(ctx context.Context, sender, recipient uuid.UUID) (*models.FriendRequest, error)

	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
}
