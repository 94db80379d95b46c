package friends

import "errors"

// Business-rule failures. These are surfaced to the caller verbatim as
// declined operations and are never retried.
var (
	// ErrUnauthenticated indicates no resolved caller identity.
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// ErrMissingRecipient indicates a send call without a target id.
	ErrMissingRecipient = errors.New("recipient id is required")

	// ErrMissingRequest indicates an accept call without a request id.
	ErrMissingRequest = errors.New("request id is required")

	// ErrSelfRequest indicates an attempt to friend-request oneself.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound indicates the referenced friend request does not exist.
	ErrRequestNotFound = errors.New("friend request not found")

	// ErrAlreadyFriends indicates the pair is already linked.
	ErrAlreadyFriends = errors.New("users are already friends")

	// ErrRequestExists indicates a request already exists between the pair,
	// in either direction.
	ErrRequestExists = errors.New("a friend request already exists between these users")

	// ErrNotRecipient indicates the caller tried to accept a request that
	// was not addressed to them.
	ErrNotRecipient = errors.New("only the recipient may accept this request")
)

// ErrStoreUnavailable wraps a collaborator failure. It is the only class
// the caller may transparently retry; the engine itself never retries.
var ErrStoreUnavailable = errors.New("connection store unavailable")
