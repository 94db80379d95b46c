package friends

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/streamify/connect/internal/cache"
	"github.com/streamify/connect/internal/models"
)

// Engine implements the relationship workflow: recommendations, the
// request/accept state machine, and the symmetric friend-graph mutation.
// All identity is passed explicitly; there is no ambient session state.
type Engine struct {
	store ConnectionStore
}

func NewEngine(store ConnectionStore) *Engine {
	return &Engine{store: store}
}

// Store exposes the underlying connection store.
func (e *Engine) Store() ConnectionStore {
	return e.store
}

// Recommend returns onboarded users excluding the caller and everyone
// already in the caller's friend list. Order follows store iteration and
// is not a contract. The result is never nil.
func (e *Engine) Recommend(ctx context.Context, callerID uuid.UUID) ([]models.UserSummary, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	caller, err := e.store.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	users, err := e.store.QueryUsers(ctx, UserFilter{
		ExcludeID:     callerID,
		ExcludeIDs:    caller.Friends,
		OnboardedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, models.SummaryOf(&users[i]))
	}
	return out, nil
}

// ListFriends resolves the caller's friend ids into profile summaries.
// An id that no longer resolves is dropped here; this is the single
// dangling-reference filter in the read path.
func (e *Engine) ListFriends(ctx context.Context, callerID uuid.UUID) ([]models.UserSummary, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	caller, err := e.store.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserSummary, 0, len(caller.Friends))
	for _, fid := range caller.Friends {
		friend, err := e.store.GetUser(ctx, fid)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.SummaryOf(friend))
	}
	return out, nil
}

// SendRequest creates a pending friend request from sender to recipient.
// Preconditions are checked in order and each failure short-circuits with
// its own sentinel. The graph itself is untouched until acceptance.
func (e *Engine) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if recipientID == uuid.Nil {
		return nil, ErrMissingRecipient
	}
	if senderID == recipientID {
		return nil, ErrSelfRequest
	}

	recipient, err := e.store.GetUser(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient.HasFriend(senderID) {
		return nil, ErrAlreadyFriends
	}

	_, err = e.store.FindRequestBetween(ctx, senderID, recipientID)
	if err == nil {
		return nil, ErrRequestExists
	}
	if !errors.Is(err, ErrRequestNotFound) {
		return nil, err
	}

	// The read above is advisory only; the store's pair-uniqueness
	// constraint closes the race between concurrent creates.
	req, err := e.store.CreateRequest(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	e.publishEvent(cache.FriendEventRecord{
		Type:      cache.EventRequestSent,
		RequestID: req.ID,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Timestamp: time.Now().UnixMilli(),
	})
	return req, nil
}

// AcceptRequest moves a pending request to accepted and links both users.
// Only the recipient may accept. The status update lands first; the link
// is idempotent, so a retry after a partial failure can never double-link
// or leave an accepted request without its edge.
func (e *Engine) AcceptRequest(ctx context.Context, callerID, requestID uuid.UUID) error {
	if callerID == uuid.Nil {
		return ErrUnauthenticated
	}
	if requestID == uuid.Nil {
		return ErrMissingRequest
	}

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Recipient != callerID {
		return ErrNotRecipient
	}

	if err := e.store.UpdateRequestStatus(ctx, requestID, models.RequestAccepted); err != nil {
		return err
	}
	if err := e.store.AddFriendLink(ctx, req.Sender, req.Recipient); err != nil {
		return err
	}

	e.publishEvent(cache.FriendEventRecord{
		Type:      cache.EventRequestAccepted,
		RequestID: req.ID,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Timestamp: time.Now().UnixMilli(),
	})
	return nil
}

// RequestView pairs a request with the counterparty profile the feed
// renders next to it.
type RequestView struct {
	Request models.FriendRequest `json:"request"`
	From    *models.UserSummary  `json:"from,omitempty"`
	To      *models.UserSummary  `json:"to,omitempty"`
}

// IncomingRequests returns the caller's notification feed: requests
// pending for the caller, and requests the caller sent that were
// accepted. Both slices are never nil.
func (e *Engine) IncomingRequests(ctx context.Context, callerID uuid.UUID) (incoming, accepted []RequestView, err error) {
	if callerID == uuid.Nil {
		return nil, nil, ErrUnauthenticated
	}

	pending, err := e.store.RequestsByRecipient(ctx, callerID, models.RequestPending)
	if err != nil {
		return nil, nil, err
	}
	incoming = make([]RequestView, 0, len(pending))
	for _, r := range pending {
		from, err := e.summaryFor(ctx, r.Sender)
		if err != nil {
			return nil, nil, err
		}
		incoming = append(incoming, RequestView{Request: r, From: from})
	}

	acceptedReqs, err := e.store.RequestsBySender(ctx, callerID, models.RequestAccepted)
	if err != nil {
		return nil, nil, err
	}
	accepted = make([]RequestView, 0, len(acceptedReqs))
	for _, r := range acceptedReqs {
		to, err := e.summaryFor(ctx, r.Recipient)
		if err != nil {
			return nil, nil, err
		}
		accepted = append(accepted, RequestView{Request: r, To: to})
	}

	return incoming, accepted, nil
}

// OutgoingRequests returns the caller's still-pending sent requests.
func (e *Engine) OutgoingRequests(ctx context.Context, callerID uuid.UUID) ([]RequestView, error) {
	if callerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	reqs, err := e.store.RequestsBySender(ctx, callerID, models.RequestPending)
	if err != nil {
		return nil, err
	}
	out := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		to, err := e.summaryFor(ctx, r.Recipient)
		if err != nil {
			return nil, err
		}
		out = append(out, RequestView{Request: r, To: to})
	}
	return out, nil
}

// summaryFor resolves a counterparty profile for a request view. A
// counterparty that no longer resolves yields a fallback summary rather
// than an error; the request itself stays visible.
func (e *Engine) summaryFor(ctx context.Context, id uuid.UUID) (*models.UserSummary, error) {
	u, err := e.store.GetUser(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		s := models.SummaryOf(&models.User{ID: id})
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	s := models.SummaryOf(u)
	return &s, nil
}

// publishEvent pushes a friend event onto the Redis feed queue.
// Best-effort: the mutation has already committed, so a publish failure
// is logged and dropped.
func (e *Engine) publishEvent(rec cache.FriendEventRecord) {
	go func(rec cache.FriendEventRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishFriendEvent(ctx, rec); err != nil {
			log.Warnf("failed to publish friend event %s for request %s: %v", rec.Type, rec.RequestID, err)
		}
	}(rec)
}
