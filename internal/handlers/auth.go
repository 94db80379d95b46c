package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"github.com/streamify/connect/internal/auth"
	"github.com/streamify/connect/internal/database"
	"github.com/streamify/connect/internal/models"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignupHandler creates a new account. Profile fields are filled later
// during onboarding.
func SignupHandler(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		user := models.User{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
		}
		if err := store.CreateUser(r.Context(), &user); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			log.Errorf("failed to create user: %v", err)
			http.Error(w, "error creating user", http.StatusInternalServerError)
			return
		}

		token, err := auth.CreateJWT(user.ID.String())
		if err != nil {
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}
		setAuthCookie(w, token)

		user.Password = ""
		writeJSON(w, http.StatusCreated, user)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler verifies credentials and issues a session token, both in
// the response body and as an auth_token cookie.
func LoginHandler(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request payload", http.StatusBadRequest)
			return
		}

		user, err := store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}
		match, err := auth.ComparePasswordAndHash(req.Password, user.Password)
		if err != nil || !match {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		token, err := auth.CreateJWT(user.ID.String())
		if err != nil {
			log.Errorf("failed to create jwt: %v", err)
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}
		setAuthCookie(w, token)

		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}

type onboardRequest struct {
	FullName         string `json:"full_name"`
	Bio              string `json:"bio"`
	ProfilePic       string `json:"profile_pic"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Location         string `json:"location"`
}

// OnboardHandler fills in the caller's profile and marks them onboarded,
// which makes them eligible to appear in recommendations.
func OnboardHandler(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := callerID(w, r)
		if !ok {
			return
		}

		var req onboardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.FullName == "" || req.NativeLanguage == "" || req.LearningLanguage == "" {
			http.Error(w, "full_name, native_language and learning_language are required", http.StatusBadRequest)
			return
		}

		user, err := store.GetUser(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		user.FullName = req.FullName
		user.Bio = req.Bio
		user.ProfilePic = req.ProfilePic
		user.NativeLanguage = req.NativeLanguage
		user.LearningLanguage = req.LearningLanguage
		user.Location = req.Location
		user.IsOnboarded = true

		if err := store.UpdateProfile(r.Context(), user); err != nil {
			writeEngineError(w, err)
			return
		}

		user.Password = ""
		writeJSON(w, http.StatusOK, user)
	}
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})
}
