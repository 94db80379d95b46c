package friends_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamify/connect/internal/database"
	"github.com/streamify/connect/internal/friends"
	"github.com/streamify/connect/internal/models"
)

func newTestUser(name string, onboarded bool) models.User {
	return models.User{
		ID:               uuid.New(),
		Email:            name + "@example.com",
		FullName:         name,
		NativeLanguage:   "English",
		LearningLanguage: "Spanish",
		IsOnboarded:      onboarded,
	}
}

func setupEngine(t *testing.T, users ...models.User) (*friends.Engine, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	for _, u := range users {
		store.PutUser(u)
	}
	return friends.NewEngine(store), store
}

func summaryIDs(list []models.UserSummary) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestRecommendExcludesCallerAndFriends(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	u3 := newTestUser("carol", true)
	u4 := newTestUser("dave", false) // not onboarded

	engine, store := setupEngine(t, u1, u2, u3, u4)
	ctx := context.Background()

	require.NoError(t, store.AddFriendLink(ctx, u1.ID, u2.ID))

	recs, err := engine.Recommend(ctx, u1.ID)
	require.NoError(t, err)
	require.NotNil(t, recs)

	ids := summaryIDs(recs)
	assert.NotContains(t, ids, u1.ID, "caller must never be recommended to themselves")
	assert.NotContains(t, ids, u2.ID, "existing friends must be excluded")
	assert.NotContains(t, ids, u4.ID, "users who have not onboarded are not eligible")
	assert.Contains(t, ids, u3.ID)
}

func TestRecommendEmptyIsNotNil(t *testing.T) {
	u1 := newTestUser("alice", true)
	engine, _ := setupEngine(t, u1)

	recs, err := engine.Recommend(context.Background(), u1.ID)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendRequiresIdentity(t *testing.T) {
	engine, _ := setupEngine(t)
	_, err := engine.Recommend(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, friends.ErrUnauthenticated)
}

func TestSendRequestToSelf(t *testing.T) {
	u1 := newTestUser("alice", true)
	engine, _ := setupEngine(t, u1)

	_, err := engine.SendRequest(context.Background(), u1.ID, u1.ID)
	assert.ErrorIs(t, err, friends.ErrSelfRequest)
}

func TestSendRequestMissingRecipient(t *testing.T) {
	u1 := newTestUser("alice", true)
	engine, _ := setupEngine(t, u1)
	ctx := context.Background()

	_, err := engine.SendRequest(ctx, u1.ID, uuid.Nil)
	assert.ErrorIs(t, err, friends.ErrMissingRecipient)

	_, err = engine.SendRequest(ctx, u1.ID, uuid.New())
	assert.ErrorIs(t, err, friends.ErrUserNotFound)
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	engine, store := setupEngine(t, u1, u2)
	ctx := context.Background()

	require.NoError(t, store.AddFriendLink(ctx, u1.ID, u2.ID))

	_, err := engine.SendRequest(ctx, u1.ID, u2.ID)
	assert.ErrorIs(t, err, friends.ErrAlreadyFriends)
}

func TestSendRequestDuplicateEitherDirection(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	engine, store := setupEngine(t, u1, u2)
	ctx := context.Background()

	_, err := engine.SendRequest(ctx, u1.ID, u2.ID)
	require.NoError(t, err)

	// same direction
	_, err = engine.SendRequest(ctx, u1.ID, u2.ID)
	assert.ErrorIs(t, err, friends.ErrRequestExists)

	// reverse direction
	_, err = engine.SendRequest(ctx, u2.ID, u1.ID)
	assert.ErrorIs(t, err, friends.ErrRequestExists)

	// exactly one record exists for the pair
	req, err := store.FindRequestBetween(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, req.Sender)
	assert.Equal(t, u2.ID, req.Recipient)
}

func TestAcceptRequestLinksBothUsers(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	engine, store := setupEngine(t, u1, u2)
	ctx := context.Background()

	req, err := engine.SendRequest(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)

	// graph untouched until acceptance
	sender, err := store.GetUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, sender.Friends)

	require.NoError(t, engine.AcceptRequest(ctx, u2.ID, req.ID))

	got, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, got.Status)

	a, err := store.GetUser(ctx, u1.ID)
	require.NoError(t, err)
	b, err := store.GetUser(ctx, u2.ID)
	require.NoError(t, err)
	assert.True(t, a.HasFriend(u2.ID), "sender must list recipient")
	assert.True(t, b.HasFriend(u1.ID), "recipient must list sender")
}

func TestAcceptRequestOnlyRecipient(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	u3 := newTestUser("carol", true)
	engine, _ := setupEngine(t, u1, u2, u3)
	ctx := context.Background()

	req, err := engine.SendRequest(ctx, u1.ID, u2.ID)
	require.NoError(t, err)

	// the sender cannot self-accept
	err = engine.AcceptRequest(ctx, u1.ID, req.ID)
	assert.ErrorIs(t, err, friends.ErrNotRecipient)

	// nor can a third party
	err = engine.AcceptRequest(ctx, u3.ID, req.ID)
	assert.ErrorIs(t, err, friends.ErrNotRecipient)
}

func TestAcceptRequestNotFound(t *testing.T) {
	u1 := newTestUser("alice", true)
	engine, _ := setupEngine(t, u1)
	ctx := context.Background()

	err := engine.AcceptRequest(ctx, u1.ID, uuid.New())
	assert.ErrorIs(t, err, friends.ErrRequestNotFound)

	err = engine.AcceptRequest(ctx, u1.ID, uuid.Nil)
	assert.ErrorIs(t, err, friends.ErrMissingRequest)
}

func TestListFriendsFiltersDanglingReferences(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	u3 := newTestUser("carol", true)
	engine, store := setupEngine(t, u1, u2, u3)
	ctx := context.Background()

	require.NoError(t, store.AddFriendLink(ctx, u1.ID, u2.ID))
	require.NoError(t, store.AddFriendLink(ctx, u1.ID, u3.ID))

	store.DeleteUser(u3.ID)

	list, err := engine.ListFriends(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, u2.ID, list[0].ID)
}

// TestFriendFlow walks the full lifecycle: send, accept, and the state of
// every listing afterwards.
func TestFriendFlow(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	engine, _ := setupEngine(t, u1, u2)
	ctx := context.Background()

	r1, err := engine.SendRequest(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, r1.Status)

	// r1 shows up pending for bob, and in alice's outgoing list
	incoming, accepted, err := engine.IncomingRequests(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, r1.ID, incoming[0].Request.ID)
	require.NotNil(t, incoming[0].From)
	assert.Equal(t, "alice", incoming[0].From.FullName)
	assert.Empty(t, accepted)

	outgoing, err := engine.OutgoingRequests(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, r1.ID, outgoing[0].Request.ID)

	require.NoError(t, engine.AcceptRequest(ctx, u2.ID, r1.ID))

	f1, err := engine.ListFriends(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, f1, 1)
	assert.Equal(t, u2.ID, f1[0].ID)

	f2, err := engine.ListFriends(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, f2, 1)
	assert.Equal(t, u1.ID, f2[0].ID)

	// alice's feed now shows the accepted request; nothing is pending
	incoming, accepted, err = engine.IncomingRequests(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)
	require.Len(t, accepted, 1)
	assert.Equal(t, r1.ID, accepted[0].Request.ID)
	require.NotNil(t, accepted[0].To)
	assert.Equal(t, "bob", accepted[0].To.FullName)

	outgoing, err = engine.OutgoingRequests(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	// accepted users no longer appear in each other's recommendations
	recs, err := engine.Recommend(ctx, u1.ID)
	require.NoError(t, err)
	assert.NotContains(t, summaryIDs(recs), u2.ID)
}

func TestIncomingRequestsKeepsOrphanedCounterparty(t *testing.T) {
	u1 := newTestUser("alice", true)
	u2 := newTestUser("bob", true)
	engine, store := setupEngine(t, u1, u2)
	ctx := context.Background()

	r1, err := engine.SendRequest(ctx, u1.ID, u2.ID)
	require.NoError(t, err)

	store.DeleteUser(u1.ID)

	incoming, _, err := engine.IncomingRequests(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, r1.ID, incoming[0].Request.ID)
	require.NotNil(t, incoming[0].From)
	assert.Equal(t, models.FallbackName, incoming[0].From.FullName)
}
