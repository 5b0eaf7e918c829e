package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dongwook32/web-hub/types"
)

// PostRepository handles persistence for posts, comments, likes, and
// attachment metadata.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// missingAuthor is the nickname shown when the author row is gone.
const missingAuthor = "unknown"

const postSelect = `
	SELECT p.id, p.user_id, p.board_id, p.title, p.content,
	       COALESCE(u.nickname, '` + missingAuthor + `') AS author_nickname,
	       p.views,
	       (SELECT COUNT(1) FROM likes l WHERE l.post_id = p.id) AS likes,
	       (SELECT COUNT(1) FROM comments c WHERE c.post_id = p.id) AS comments_count,
	       p.created_at, p.updated_at
	FROM posts p
	LEFT JOIN users u ON u.id = p.user_id`

func scanPost(row interface{ Scan(...any) error }) (types.Post, error) {
	var post types.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.BoardID,
		&post.Title,
		&post.Content,
		&post.AuthorNickname,
		&post.Views,
		&post.Likes,
		&post.CommentsCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

// List returns posts newest first. boardID 0 means all boards.
func (r *PostRepository) List(ctx context.Context, boardID, offset, limit int) ([]types.Post, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM posts p WHERE ($1 = 0 OR p.board_id = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, boardID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = postSelect + `
	WHERE ($1 = 0 OR p.board_id = $1)
	ORDER BY p.created_at DESC
	OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, boardID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = postSelect + ` WHERE p.id = $1`
	return scanPost(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `
		INSERT INTO posts (user_id, board_id, title, content, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.UserID,
		post.BoardID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// IncrementViews bumps the view counter without racing other readers.
func (r *PostRepository) IncrementViews(ctx context.Context, id int) error {
	const query = `UPDATE posts SET views = views + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) ListComments(ctx context.Context, postID int) ([]types.Comment, error) {
	const query = `
		SELECT c.id, c.post_id, c.user_id, c.parent_id, c.content,
		       COALESCE(u.nickname, '` + missingAuthor + `') AS author_nickname,
		       c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.UserID,
			&comment.ParentID,
			&comment.Content,
			&comment.AuthorNickname,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *PostRepository) CreateComment(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.CreatedAt = time.Now()

	const query = `
		INSERT INTO comments (post_id, user_id, parent_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.PostID,
		comment.UserID,
		comment.ParentID,
		comment.Content,
		comment.CreatedAt,
	).Scan(&comment.ID); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

// ToggleLike records or removes the (user, post) endorsement and returns
// whether the post is now liked plus the current count. The primary key
// on (user_id, post_id) keeps concurrent toggles to a single row.
func (r *PostRepository) ToggleLike(ctx context.Context, userID, postID int) (bool, int, error) {
	const insertQuery = `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, insertQuery, userID, postID)
	if err != nil {
		return false, 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	liked := affected > 0
	if !liked {
		const deleteQuery = `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`
		if _, err := r.db.ExecContext(ctx, deleteQuery, userID, postID); err != nil {
			return false, 0, err
		}
	}

	const countQuery = `SELECT COUNT(1) FROM likes WHERE post_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, countQuery, postID).Scan(&count); err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *PostRepository) CreateAttachment(ctx context.Context, att types.Attachment) (types.Attachment, error) {
	att.CreatedAt = time.Now()

	const query = `
		INSERT INTO attachments (post_id, object_key, filename, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		att.PostID,
		att.ObjectKey,
		att.Filename,
		att.ContentType,
		att.Size,
		att.CreatedAt,
	).Scan(&att.ID); err != nil {
		return types.Attachment{}, err
	}
	return att, nil
}

func (r *PostRepository) GetAttachment(ctx context.Context, postID, attID int) (types.Attachment, error) {
	const query = `
		SELECT id, post_id, object_key, filename, content_type, size, created_at
		FROM attachments
		WHERE id = $1 AND post_id = $2`
	var att types.Attachment
	err := r.db.QueryRowContext(ctx, query, attID, postID).Scan(
		&att.ID,
		&att.PostID,
		&att.ObjectKey,
		&att.Filename,
		&att.ContentType,
		&att.Size,
		&att.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Attachment{}, ErrNotFound
		}
		return types.Attachment{}, err
	}
	return att, nil
}
