package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a friend request. A request is
// created pending and moves to accepted exactly once; there is no
// rejected or cancelled state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
)

type FriendRequest struct {
	ID        uuid.UUID     `json:"id"`
	Sender    uuid.UUID     `json:"sender"`
	Recipient uuid.UUID     `json:"recipient"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
