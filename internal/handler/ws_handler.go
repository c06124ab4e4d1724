/*
Package handler provides HTTP handler functions for accounts, messaging, the
community feed, and the real-time channel.

This file upgrades real-time channel requests to WebSocket and hands the
connection to the presence hub. The user identity rides on the connection as
a query parameter; the channel itself does not re-verify the credential.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chirp/internal/app/rtc"
	"chirp/internal/pkg/errs"
	"chirp/internal/pkg/limiter"
	"chirp/internal/pkg/logx"
	"chirp/internal/pkg/resp"
)

// HandleWebSocket upgrades the connection, registers the client with the
// presence hub, and runs the pumps until disconnect.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		userID := r.URL.Query().Get("userId")
		if _, err := uuid.Parse(userID); err != nil {
			logx.Warn("WebSocket request rejected: missing or malformed userId", "user_id", userID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := rtc.NewClient(deps.Hub, conn, userID)

		go client.WritePump()

		logx.Info("WebSocket connection established", "client_id", userID)

		deps.Hub.Register(client)

		client.ReadPump()
	}
}
