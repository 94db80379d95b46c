// internal/handlers/friends.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/streamify/connect/internal/friends"
)

// RecommendedUsersHandler returns onboarded users the caller is not yet
// connected to.
func RecommendedUsersHandler(engine *friends.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}
		recs, err := engine.Recommend(r.Context(), caller)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// FriendsHandler returns the caller's friends as profile summaries.
func FriendsHandler(engine *friends.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}
		list, err := engine.ListFriends(r.Context(), caller)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// FriendRequestHandler dispatches the friend-request mutations:
//
//	POST /users/friend-request/{id}         send a request to user {id}
//	PUT  /users/friend-request/{id}/accept  accept request {id}
func FriendRequestHandler(engine *friends.Engine, hub *NotifyHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}

		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/users/friend-request/"), "/")
		if len(parts) < 1 || parts[0] == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		id, err := uuid.Parse(parts[0])
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		switch {
		case len(parts) == 1 && r.Method == http.MethodPost:
			req, err := engine.SendRequest(r.Context(), caller, id)
			if err != nil {
				writeEngineError(w, err)
				return
			}
			hub.Notify(req.Recipient, NotifyEvent{Type: "friend_request", Request: req})
			writeJSON(w, http.StatusCreated, req)

		case len(parts) == 2 && parts[1] == "accept" && r.Method == http.MethodPut:
			if err := engine.AcceptRequest(r.Context(), caller, id); err != nil {
				writeEngineError(w, err)
				return
			}
			req, err := engine.Store().GetRequest(r.Context(), id)
			if err == nil {
				hub.Notify(req.Sender, NotifyEvent{Type: "request_accepted", Request: req})
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "friend request accepted"})

		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
}

type friendRequestsResponse struct {
	IncomingReqs []friends.RequestView `json:"incoming_reqs"`
	AcceptedReqs []friends.RequestView `json:"accepted_reqs"`
}

// FriendRequestsHandler returns the caller's notification feed: pending
// requests addressed to them, plus requests they sent that were accepted.
func FriendRequestsHandler(engine *friends.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}
		incoming, accepted, err := engine.IncomingRequests(r.Context(), caller)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, friendRequestsResponse{
			IncomingReqs: incoming,
			AcceptedReqs: accepted,
		})
	}
}

// OutgoingFriendRequestsHandler returns the caller's still-pending sent
// requests.
func OutgoingFriendRequestsHandler(engine *friends.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}
		out, err := engine.OutgoingRequests(r.Context(), caller)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
