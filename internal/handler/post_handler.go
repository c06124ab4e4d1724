/*
Package handler provides HTTP handler functions for accounts, messaging, the
community feed, and the real-time channel.

This file covers the community feed: post creation, the feed listing, like
toggling, comments, and author-only deletion.
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

type CreatePostInput struct {
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// HandleCreatePost creates a feed post, uploading an optional image first.
func HandleCreatePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input CreatePostInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Content == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmptyPost))
			return
		}

		imageURL := ""
		if input.Image != "" {
			url, customErr := uploadImage(r.Context(), deps, "posts", input.Image)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			imageURL = url
		}

		post, err := deps.Posts.CreatePost(r.Context(), identity.ID, input.Content, imageURL)
		if err != nil {
			logx.Error(err, "create post failed", "author_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"post": post,
		})
	}
}

// HandleGetPosts returns the whole feed, newest first.
func HandleGetPosts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		posts, err := deps.Posts.ListPosts(r.Context())
		if err != nil {
			logx.Error(err, "feed fetch failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"posts": posts,
		})
	}
}

// HandleLikePost toggles the caller's like on a post.
func HandleLikePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		postID, customErr := postIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := deps.Posts.GetPost(r.Context(), postID); err != nil {
			respondPostError(w, r, err, postID)
			return
		}

		post, err := deps.Posts.ToggleLike(r.Context(), postID, identity.ID)
		if err != nil {
			respondPostError(w, r, err, postID)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"post": post,
		})
	}
}

type CommentInput struct {
	Text string `json:"text"`
}

// HandleCommentPost appends a comment to a post.
func HandleCommentPost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		postID, customErr := postIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input CommentInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Text == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmptyComment))
			return
		}

		if _, err := deps.Posts.GetPost(r.Context(), postID); err != nil {
			respondPostError(w, r, err, postID)
			return
		}

		post, err := deps.Posts.AddComment(r.Context(), postID, identity.ID, input.Text)
		if err != nil {
			respondPostError(w, r, err, postID)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"post": post,
		})
	}
}

// HandleDeletePost deletes a post. Only the author may delete it.
func HandleDeletePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		postID, customErr := postIDParam(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		post, err := deps.Posts.GetPost(r.Context(), postID)
		if err != nil {
			respondPostError(w, r, err, postID)
			return
		}

		if post.Author.ID != identity.ID {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotPostAuthor))
			return
		}

		if err := deps.Posts.DeletePost(r.Context(), postID); err != nil {
			respondPostError(w, r, err, postID)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Post deleted successfully.",
		})
	}
}

// postIDParam extracts and validates the post id URL parameter.
func postIDParam(r *http.Request) (string, *errs.CustomError) {
	postID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(postID); err != nil {
		return "", errs.NewError(errs.ErrPostNotFound)
	}
	return postID, nil
}

// respondPostError maps store errors on the feed path to responses.
func respondPostError(w http.ResponseWriter, r *http.Request, err error, postID string) {
	if errors.Is(err, store.ErrNotFound) {
		resp.RespondError(w, r, errs.NewError(errs.ErrPostNotFound))
		return
	}
	logx.Error(err, "feed operation failed", "post_id", postID)
	resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
}
