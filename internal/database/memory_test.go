package database

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamify/connect/internal/friends"
	"github.com/streamify/connect/internal/models"
)

func TestAddFriendLinkIdempotent(t *testing.T) {
	store := NewMemoryStore()
	a := models.User{ID: uuid.New()}
	b := models.User{ID: uuid.New()}
	store.PutUser(a)
	store.PutUser(b)
	ctx := context.Background()

	require.NoError(t, store.AddFriendLink(ctx, a.ID, b.ID))
	require.NoError(t, store.AddFriendLink(ctx, a.ID, b.ID))
	require.NoError(t, store.AddFriendLink(ctx, b.ID, a.ID))

	ua, err := store.GetUser(ctx, a.ID)
	require.NoError(t, err)
	ub, err := store.GetUser(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{b.ID}, ua.Friends)
	assert.Equal(t, []uuid.UUID{a.ID}, ub.Friends)
}

func TestCreateRequestPairUniqueness(t *testing.T) {
	store := NewMemoryStore()
	a := models.User{ID: uuid.New()}
	b := models.User{ID: uuid.New()}
	store.PutUser(a)
	store.PutUser(b)
	ctx := context.Background()

	_, err := store.CreateRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = store.CreateRequest(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, friends.ErrRequestExists)

	_, err = store.CreateRequest(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, friends.ErrRequestExists)
}

// Concurrent creates for the same pair: exactly one may win, because the
// existence check and the insert run under the same lock.
func TestCreateRequestConcurrentPair(t *testing.T) {
	store := NewMemoryStore()
	a := models.User{ID: uuid.New()}
	b := models.User{ID: uuid.New()}
	store.PutUser(a)
	store.PutUser(b)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		sender, recipient := a.ID, b.ID
		if i%2 == 1 {
			sender, recipient = b.ID, a.ID
		}
		go func(s, r uuid.UUID) {
			defer wg.Done()
			if _, err := store.CreateRequest(ctx, s, r); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(sender, recipient)
	}
	wg.Wait()

	assert.Equal(t, 1, created, "exactly one create may succeed for a pair")
}

func TestMemoryStoreCopiesRecords(t *testing.T) {
	store := NewMemoryStore()
	a := models.User{ID: uuid.New(), FullName: "alice"}
	store.PutUser(a)
	ctx := context.Background()

	u, err := store.GetUser(ctx, a.ID)
	require.NoError(t, err)
	u.FullName = "mutated"
	u.Friends = append(u.Friends, uuid.New())

	again, err := store.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.FullName)
	assert.Empty(t, again.Friends)
}

func TestRequestStatusLifecycle(t *testing.T) {
	store := NewMemoryStore()
	a := models.User{ID: uuid.New()}
	b := models.User{ID: uuid.New()}
	store.PutUser(a)
	store.PutUser(b)
	ctx := context.Background()

	req, err := store.CreateRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.NotEqual(t, uuid.Nil, req.ID)

	require.NoError(t, store.UpdateRequestStatus(ctx, req.ID, models.RequestAccepted))

	got, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, got.Status)

	// re-applying the same status is a no-op, keeping accept retryable
	require.NoError(t, store.UpdateRequestStatus(ctx, req.ID, models.RequestAccepted))

	err = store.UpdateRequestStatus(ctx, uuid.New(), models.RequestAccepted)
	assert.ErrorIs(t, err, friends.ErrRequestNotFound)
}

func TestQueryUsersFilter(t *testing.T) {
	store := NewMemoryStore()
	a := models.User{ID: uuid.New(), IsOnboarded: true}
	b := models.User{ID: uuid.New(), IsOnboarded: true}
	c := models.User{ID: uuid.New(), IsOnboarded: false}
	store.PutUser(a)
	store.PutUser(b)
	store.PutUser(c)

	out, err := store.QueryUsers(context.Background(), friends.UserFilter{
		ExcludeID:     a.ID,
		OnboardedOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.ID, out[0].ID)
}
