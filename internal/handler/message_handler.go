/*
Package handler provides HTTP handler functions for accounts, messaging, the
community feed, and the real-time channel.

This file covers the messaging surface: the sidebar user list with unseen
counts, conversation history, the seen transition, and sending. A send
persists first; the real-time push afterwards is best-effort and its failure
is never surfaced to the sender.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chirp/internal/app/store"
	"chirp/internal/pkg/auth/jwt"
	"chirp/internal/pkg/errs"
	"chirp/internal/pkg/logx"
	"chirp/internal/pkg/req"
	"chirp/internal/pkg/resp"
)

// MaxMessageTextBytes caps the text portion of a message.
const MaxMessageTextBytes = 5000

// HandleGetSidebarUsers returns every other user plus the unseen-count map
// for the current user, keyed by sender id.
func HandleGetSidebarUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		users, err := deps.Users.ListUsersExcept(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "sidebar: user list failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		unseen, err := deps.Messages.CountUnseenBySender(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "sidebar: unseen counts failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users":          users,
			"unseenMessages": unseen,
		})
	}
}

// HandleGetConversation returns the full history with the other user,
// ascending by creation time. As a side effect every unseen message from
// that user to the caller transitions to seen; the transition runs before
// the read so the response reflects it. A message landing between the two
// statements stays unseen until the next fetch.
func HandleGetConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		otherID := chi.URLParam(r, "id")
		if _, err := uuid.Parse(otherID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Messages.MarkConversationSeen(r.Context(), otherID, identity.ID); err != nil {
			logx.Error(err, "conversation: seen transition failed", "user_id", identity.ID, "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		messages, err := deps.Messages.ListConversation(r.Context(), identity.ID, otherID)
		if err != nil {
			logx.Error(err, "conversation: history fetch failed", "user_id", identity.ID, "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}

// HandleMarkMessageSeen marks one message as seen by id. Idempotent.
func HandleMarkMessageSeen(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		messageID := chi.URLParam(r, "id")
		if _, err := uuid.Parse(messageID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageNotFound))
			return
		}

		message, err := deps.Messages.MarkMessageSeen(r.Context(), messageID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMessageNotFound))
				return
			}
			logx.Error(err, "mark seen failed", "message_id", messageID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": message,
		})
	}
}

type SendMessageInput struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// HandleSendMessage persists a message to the receiver and then attempts a
// real-time push. The push is fire-and-forget: a disconnected receiver
// discovers the message through the unseen-count path on the next fetch.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		receiverID := chi.URLParam(r, "id")
		if _, err := uuid.Parse(receiverID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Text == "" && input.Image == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmptyMessage))
			return
		}

		if len(input.Text) > MaxMessageTextBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageTooLong))
			return
		}

		if _, err := deps.Users.GetUserByID(r.Context(), receiverID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		imageURL := ""
		if input.Image != "" {
			url, customErr := uploadImage(r.Context(), deps, "messages", input.Image)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			imageURL = url
		}

		message, err := deps.Messages.CreateMessage(r.Context(), identity.ID, receiverID, input.Text, imageURL)
		if err != nil {
			logx.Error(err, "send: persistence failed", "sender_id", identity.ID, "receiver_id", receiverID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		if !deps.Hub.Deliver(receiverID, message) {
			logx.Info("send: receiver offline, push skipped", "receiver_id", receiverID)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"newMessage": message,
		})
	}
}
