package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const postColumns = `p.id::text, p.content, p.image, p.created_at,
	u.id::text, u.full_name, u.profile_pic`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Content, &p.Image, &p.CreatedAt,
		&p.Author.ID, &p.Author.FullName, &p.Author.ProfilePic)
	p.Likes = []string{}
	p.Comments = []Comment{}
	return p, err
}

// CreatePost inserts a feed post and returns it with the author hydrated.
func (s *Store) CreatePost(ctx context.Context, authorID, content, image string) (Post, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO posts (author_id, content, image)
		VALUES ($1::uuid, $2, $3)
		RETURNING id::text`,
		authorID, content, image).Scan(&id)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}

	return s.GetPost(ctx, id)
}

// GetPost fetches a single post with author, likes, and comments hydrated.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1::uuid`,
		id)

	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post: %w", err)
	}

	posts := []Post{p}
	if err := s.hydratePosts(ctx, posts); err != nil {
		return Post{}, err
	}
	return posts[0], nil
}

// ListPosts returns the whole feed, newest first, fully hydrated.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.hydratePosts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// hydratePosts attaches likes and comments to the given posts in place.
func (s *Store) hydratePosts(ctx context.Context, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}

	index := make(map[string]*Post, len(posts))
	ids := make([]string, 0, len(posts))
	for i := range posts {
		index[posts[i].ID] = &posts[i]
		ids = append(ids, posts[i].ID)
	}

	likeRows, err := s.pool.Query(ctx, `
		SELECT post_id::text, user_id::text
		FROM post_likes
		WHERE post_id = ANY($1::uuid[])`,
		ids)
	if err != nil {
		return fmt.Errorf("hydrate likes: %w", err)
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var postID, userID string
		if err := likeRows.Scan(&postID, &userID); err != nil {
			return fmt.Errorf("hydrate likes: %w", err)
		}
		if p, ok := index[postID]; ok {
			p.Likes = append(p.Likes, userID)
		}
	}
	if err := likeRows.Err(); err != nil {
		return err
	}

	commentRows, err := s.pool.Query(ctx, `
		SELECT c.post_id::text, c.id::text, c.text, c.created_at,
		       u.id::text, u.full_name, u.profile_pic
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1::uuid[])
		ORDER BY c.created_at ASC`,
		ids)
	if err != nil {
		return fmt.Errorf("hydrate comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var postID string
		var c Comment
		if err := commentRows.Scan(&postID, &c.ID, &c.Text, &c.CreatedAt,
			&c.User.ID, &c.User.FullName, &c.User.ProfilePic); err != nil {
			return fmt.Errorf("hydrate comments: %w", err)
		}
		if p, ok := index[postID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	return commentRows.Err()
}

// ToggleLike likes the post for the user, or removes the like when it
// already exists, and returns the updated post.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (Post, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM post_likes
		WHERE post_id = $1::uuid AND user_id = $2::uuid`,
		postID, userID)
	if err != nil {
		return Post{}, fmt.Errorf("toggle like: %w", err)
	}

	if tag.RowsAffected() == 0 {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id)
			VALUES ($1::uuid, $2::uuid)
			ON CONFLICT DO NOTHING`,
			postID, userID)
		if err != nil {
			return Post{}, fmt.Errorf("toggle like: %w", err)
		}
	}

	return s.GetPost(ctx, postID)
}

// AddComment appends a comment to the post and returns the updated post.
func (s *Store) AddComment(ctx context.Context, postID, userID, text string) (Post, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO post_comments (post_id, user_id, text)
		VALUES ($1::uuid, $2::uuid, $3)`,
		postID, userID, text)
	if err != nil {
		return Post{}, fmt.Errorf("add comment: %w", err)
	}

	return s.GetPost(ctx, postID)
}

// DeletePost removes a post. Author authorization happens in the handler.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1::uuid`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
