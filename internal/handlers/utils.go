package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/streamify/connect/internal/auth"
	"github.com/streamify/connect/internal/friends"
)

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// callerID resolves the authenticated caller from the auth_token cookie.
// Returns uuid.Nil with a written 401 response when authentication fails.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	cookieHeader := r.Header.Get("Cookie")
	if !strings.Contains(cookieHeader, "auth_token=") {
		http.Error(w, "missing auth_token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	token := extractCookieToken(cookieHeader, "auth_token")
	id, err := auth.AuthenticateUserID(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON encodes v to the response with the JSON content type.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeEngineError maps an engine failure to its HTTP status. Business
// failures are declined operations, not server errors.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, friends.ErrUnauthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, friends.ErrMissingRecipient),
		errors.Is(err, friends.ErrMissingRequest),
		errors.Is(err, friends.ErrSelfRequest),
		errors.Is(err, friends.ErrAlreadyFriends),
		errors.Is(err, friends.ErrRequestExists):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, friends.ErrUserNotFound),
		errors.Is(err, friends.ErrRequestNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, friends.ErrNotRecipient):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, friends.ErrStoreUnavailable):
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
