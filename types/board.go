package types

import "time"

// Board is a bulletin board category.
type Board struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Post is a bulletin board entry written by one author.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// UserID identifies the author.
	UserID int `json:"user_id" db:"user_id"`

	// BoardID identifies the board the post belongs to, if any.
	BoardID *int `json:"board_id,omitempty" db:"board_id"`

	// Title is the post title.
	Title string `json:"title" db:"title"`

	// Content is the post body.
	Content string `json:"content" db:"content"`

	// AuthorNickname is the author's nickname, resolved at query time.
	// Falls back to "unknown" when the author row is missing.
	AuthorNickname string `json:"author_nickname" db:"author_nickname"`

	// Views counts how many times the post detail was fetched.
	Views int `json:"views" db:"views"`

	// Likes is the number of unique users who liked the post.
	Likes int `json:"likes" db:"likes"`

	// CommentsCount is the number of comments on the post.
	CommentsCount int `json:"comments_count" db:"comments_count"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Comment belongs to one post and one author, optionally nested
// under a parent comment.
type Comment struct {
	ID             int       `json:"id" db:"id"`
	PostID         int       `json:"post_id" db:"post_id"`
	UserID         int       `json:"user_id" db:"user_id"`
	ParentID       *int      `json:"parent_id,omitempty" db:"parent_id"`
	Content        string    `json:"content" db:"content"`
	AuthorNickname string    `json:"author_nickname" db:"author_nickname"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Attachment is a file uploaded alongside a post. The bytes live in
// object storage; the row only carries the object key and metadata.
type Attachment struct {
	ID          int       `json:"id" db:"id"`
	PostID      int       `json:"post_id" db:"post_id"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
