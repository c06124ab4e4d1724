package store

import "time"

// User is a registered account. The credential hash never serializes.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profilePic,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	PasswordHash string    `json:"-"`
}

// Message is a one-to-one chat message. A message carries text, an image
// URL, or both; the seen flag only ever transitions false to true.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PostAuthor is the subset of user fields hydrated onto feed entries.
type PostAuthor struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Comment is a single comment on a feed post.
type Comment struct {
	ID        string     `json:"id"`
	User      PostAuthor `json:"user"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Post is a community feed entry with hydrated author, likes, and comments.
type Post struct {
	ID        string     `json:"id"`
	Author    PostAuthor `json:"author"`
	Content   string     `json:"content"`
	Image     string     `json:"image,omitempty"`
	Likes     []string   `json:"likes"`
	Comments  []Comment  `json:"comments"`
	CreatedAt time.Time  `json:"createdAt"`
}
