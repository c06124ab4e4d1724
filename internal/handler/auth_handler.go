/*
Package handler provides HTTP handler functions for accounts, messaging, the
community feed, and the real-time channel.

This file covers signup, login, token check, and profile updates.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"chirp/internal/app/db"
	"chirp/internal/app/storage"
	"chirp/internal/app/store"
	"chirp/internal/pkg/auth/jwt"
	"chirp/internal/pkg/errs"
	"chirp/internal/pkg/logx"
	"chirp/internal/pkg/req"
	"chirp/internal/pkg/resp"
)

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio"`
}

// HandleSignup creates a new account and issues a token.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Email = strings.ToLower(strings.TrimSpace(input.Email))

		if input.FullName == "" || input.Email == "" || input.Password == "" || input.Bio == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.Users.GetUserByEmail(r.Context(), input.Email); err == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmailExists))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user, err := deps.Users.CreateUser(r.Context(), input.FullName, input.Email, string(hashedPassword), input.Bio)
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("signup conflict: email already registered", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailExists))
				return
			}

			logx.Error(err, "signup: failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		token, err := issueToken(deps, user.ID)
		if err != nil {
			logx.Error(err, "signup: token generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"message":  "Account created successfully.",
			"userData": user,
			"token":    token,
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Email = strings.ToLower(strings.TrimSpace(input.Email))

		if input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		user, err := deps.Users.GetUserByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: user fetch failed", "email", input.Email, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := issueToken(deps, user.ID)
		if err != nil {
			logx.Error(err, "login: token generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message":  "Login successful.",
			"userData": user,
			"token":    token,
		})
	}
}

// HandleCheckAuth validates the bearer token and returns the current identity.
func HandleCheckAuth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		user, err := deps.Users.GetUserByID(r.Context(), identity.ID)
		if err != nil {
			logx.Warn("check: user not found", "id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": user,
		})
	}
}

type UpdateProfileInput struct {
	FullName   string `json:"fullName"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// HandleUpdateProfile updates the display fields of the current account.
// A profilePic data URL is uploaded to the object store before persistence;
// the replaced avatar object is reaped in the background.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FullName == "" || input.Bio == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		oldUser, err := deps.Users.GetUserByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		var profilePic *string
		if input.ProfilePic != "" {
			url, customErr := uploadImage(r.Context(), deps, "avatars", input.ProfilePic)
			if customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			profilePic = &url
		}

		user, err := deps.Users.UpdateProfile(r.Context(), identity.ID, input.FullName, input.Bio, profilePic)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "update_profile: persistence failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistenceFailed))
			return
		}

		if profilePic != nil && oldUser.ProfilePic != "" && oldUser.ProfilePic != *profilePic {
			go func(url string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.Objects.Delete(ctx, url)
			}(oldUser.ProfilePic)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": "Profile updated successfully.",
			"user":    user,
		})
	}
}

// issueToken signs an identity token for the user id.
func issueToken(deps *AppDeps, userID string) (string, error) {
	payload := &jwt.Payload{ID: userID}
	return jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
}

// uploadImage pushes a data-URL image to the object store and returns its
// public URL. Validation failures answer 400; store failures answer 500.
func uploadImage(ctx context.Context, deps *AppDeps, keyPrefix, dataURL string) (string, *errs.CustomError) {
	url, err := deps.Objects.UploadDataURL(ctx, keyPrefix, dataURL)
	if err != nil {
		var invalid *storage.ErrInvalidImage
		if errors.As(err, &invalid) {
			logx.Warn("image rejected", "reason", invalid.Reason)
			return "", errs.NewError(errs.ErrInvalidImage)
		}

		logx.Error(err, "image upload failed")
		return "", errs.NewError(errs.ErrUploadFailed)
	}
	return url, nil
}
