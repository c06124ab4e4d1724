/*
Package handler provides HTTP handler functions for accounts, messaging, the
community feed, and the real-time channel.

This file defines the main Router, applying logging, CORS, and per-IP rate
limiting before delegating to the API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chirp/internal/pkg/auth/jwt"
	"chirp/internal/pkg/limiter"
	"chirp/internal/pkg/logx"
	"chirp/internal/pkg/resp"
)

const (
	AuthRate  = 0.2
	AuthBurst = 5
	WsRate    = 0.5
	WsBurst   = 10
)

// Router sets up the main chi routing table for the application.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(WsRate), WsBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":  "ok",
			"service": "Chirp Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", authLimiter.Middleware(HandleSignup(deps)).ServeHTTP)
			auth.Post("/login", authLimiter.Middleware(HandleLogin(deps)).ServeHTTP)
			auth.Get("/check", HandleCheckAuth(deps))
			auth.Put("/update-profile", HandleUpdateProfile(deps))
		})

		api.Route("/messages", func(msg chi.Router) {
			msg.Get("/users", HandleGetSidebarUsers(deps))
			msg.Get("/{id}", HandleGetConversation(deps))
			msg.Put("/mark/{id}", HandleMarkMessageSeen(deps))
			msg.Post("/send/{id}", HandleSendMessage(deps))
		})

		api.Route("/posts", func(posts chi.Router) {
			posts.Post("/", HandleCreatePost(deps))
			posts.Get("/", HandleGetPosts(deps))
			posts.Put("/like/{id}", HandleLikePost(deps))
			posts.Put("/comment/{id}", HandleCommentPost(deps))
			posts.Delete("/{id}", HandleDeletePost(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
