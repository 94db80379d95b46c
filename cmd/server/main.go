// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/streamify/connect/internal/auth"
	"github.com/streamify/connect/internal/cache"
	"github.com/streamify/connect/internal/database"
	"github.com/streamify/connect/internal/friends"
	"github.com/streamify/connect/internal/handlers"
	"github.com/streamify/connect/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		// The friend-event queue is best-effort; the API works without it.
		logger.Warnf("redis unavailable, friend events will not be published: %v", err)
	}

	store := database.NewStore(database.DB)
	engine := friends.NewEngine(store)
	hub := handlers.NewNotifyHub()

	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()

	// auth endpoints
	mux.Handle("/auth/signup", logged(handlers.SignupHandler(store)))
	mux.Handle("/auth/login", logged(handlers.LoginHandler(store)))
	mux.Handle("/auth/onboard", logged(handlers.OnboardHandler(store)))

	// social graph endpoints
	mux.Handle("/users/recommended", logged(handlers.RecommendedUsersHandler(engine)))
	mux.Handle("/users/friends", logged(handlers.FriendsHandler(engine)))
	mux.Handle("/users/friend-request/", logged(handlers.FriendRequestHandler(engine, hub)))
	mux.Handle("/users/friend-requests", logged(handlers.FriendRequestsHandler(engine)))
	mux.Handle("/users/outgoing-friend-requests", logged(handlers.OutgoingFriendRequestsHandler(engine)))

	// notification websocket
	mux.Handle("/ws/notifications", logged(handlers.NotificationsWSHandler(logger, hub)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
