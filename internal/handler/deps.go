package handler

import (
	"context"

	"chirp/internal/app/rtc"
	"chirp/internal/app/storage"
	"chirp/internal/app/store"
	"chirp/internal/configs"
)

// UserStore is the persistence surface for accounts. *store.Store satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, fullName, email, passwordHash, bio string) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
	ListUsersExcept(ctx context.Context, id string) ([]store.User, error)
	UpdateProfile(ctx context.Context, id, fullName, bio string, profilePic *string) (store.User, error)
}

// MessageStore is the persistence surface for one-to-one messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, senderID, receiverID, text, image string) (store.Message, error)
	ListConversation(ctx context.Context, userA, userB string) ([]store.Message, error)
	MarkConversationSeen(ctx context.Context, senderID, receiverID string) error
	MarkMessageSeen(ctx context.Context, id string) (store.Message, error)
	CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error)
}

// PostStore is the persistence surface for the community feed.
type PostStore interface {
	CreatePost(ctx context.Context, authorID, content, image string) (store.Post, error)
	GetPost(ctx context.Context, id string) (store.Post, error)
	ListPosts(ctx context.Context) ([]store.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (store.Post, error)
	AddComment(ctx context.Context, postID, userID, text string) (store.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

// AppDeps bundles everything the handlers need.
type AppDeps struct {
	Config   *configs.AppConfig
	Hub      *rtc.Hub
	Users    UserStore
	Messages MessageStore
	Posts    PostStore
	Objects  storage.ObjectStore
}
