package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dongwook32/web-hub/internal/events"
	"github.com/dongwook32/web-hub/internal/storage"
	"github.com/dongwook32/web-hub/types"
	"github.com/google/uuid"
)

// ErrStorageDisabled is returned by attachment operations when the
// deployment has no object store configured.
var ErrStorageDisabled = errors.New("attachment storage is not configured")

// ErrEmptyContent is returned when a post or comment has no body.
var ErrEmptyContent = errors.New("title and content are required")

// PostRepository defines persistence operations for board content.
type PostRepository interface {
	List(ctx context.Context, boardID, offset, limit int) ([]types.Post, int, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	IncrementViews(ctx context.Context, id int) error
	ListComments(ctx context.Context, postID int) ([]types.Comment, error)
	CreateComment(ctx context.Context, comment types.Comment) (types.Comment, error)
	ToggleLike(ctx context.Context, userID, postID int) (bool, int, error)
	CreateAttachment(ctx context.Context, att types.Attachment) (types.Attachment, error)
	GetAttachment(ctx context.Context, postID, attID int) (types.Attachment, error)
}

// BoardLister defines persistence operations for board categories.
type BoardLister interface {
	List(ctx context.Context) ([]types.Board, error)
}

// BoardService encapsulates bulletin-board use-cases.
type BoardService struct {
	posts   PostRepository
	boards  BoardLister
	objects storage.ObjectStorage
	bus     *events.Publisher
}

func NewBoardService(posts PostRepository, boards BoardLister, objects storage.ObjectStorage, bus *events.Publisher) *BoardService {
	return &BoardService{
		posts:   posts,
		boards:  boards,
		objects: objects,
		bus:     bus,
	}
}

func (s *BoardService) ListBoards(ctx context.Context) ([]types.Board, error) {
	return s.boards.List(ctx)
}

func (s *BoardService) ListPosts(ctx context.Context, boardID, offset, limit int) ([]types.Post, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.posts.List(ctx, boardID, offset, limit)
}

// GetPost fetches a post detail and counts the view.
func (s *BoardService) GetPost(ctx context.Context, id int) (types.Post, []types.Comment, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return types.Post{}, nil, err
	}
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return types.Post{}, nil, err
	}
	comments, err := s.posts.ListComments(ctx, id)
	if err != nil {
		return types.Post{}, nil, err
	}
	return post, comments, nil
}

func (s *BoardService) CreatePost(ctx context.Context, post types.Post) (types.Post, error) {
	post.Title = strings.TrimSpace(post.Title)
	post.Content = strings.TrimSpace(post.Content)
	if post.Title == "" || post.Content == "" {
		return types.Post{}, ErrEmptyContent
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	s.bus.Publish(ctx, events.ChannelPosts, events.PostCreated, map[string]any{
		"post_id": created.ID,
		"user_id": created.UserID,
		"title":   created.Title,
	})
	return created, nil
}

func (s *BoardService) CreateComment(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.Content = strings.TrimSpace(comment.Content)
	if comment.Content == "" {
		return types.Comment{}, ErrEmptyContent
	}
	// The post must exist; a dangling comment is a referential bug.
	if _, err := s.posts.Get(ctx, comment.PostID); err != nil {
		return types.Comment{}, err
	}
	return s.posts.CreateComment(ctx, comment)
}

func (s *BoardService) ToggleLike(ctx context.Context, userID, postID int) (bool, int, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return false, 0, err
	}
	return s.posts.ToggleLike(ctx, userID, postID)
}

// AddAttachment stores the bytes in object storage, then records the
// metadata row keyed by the generated object key.
func (s *BoardService) AddAttachment(ctx context.Context, postID int, filename, contentType string, data []byte) (types.Attachment, error) {
	if s.objects == nil {
		return types.Attachment{}, ErrStorageDisabled
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return types.Attachment{}, err
	}

	key := fmt.Sprintf("posts/%d/%s", postID, uuid.New().String())
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.Attachment{}, fmt.Errorf("upload attachment: %w", err)
	}

	att, err := s.posts.CreateAttachment(ctx, types.Attachment{
		PostID:      postID,
		ObjectKey:   key,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		// Keep the store consistent: drop the orphaned object.
		_ = s.objects.Delete(ctx, key)
		return types.Attachment{}, err
	}
	return att, nil
}

// OpenAttachment returns the metadata and a reader over the bytes.
func (s *BoardService) OpenAttachment(ctx context.Context, postID, attID int) (types.Attachment, io.ReadCloser, error) {
	if s.objects == nil {
		return types.Attachment{}, nil, ErrStorageDisabled
	}
	att, err := s.posts.GetAttachment(ctx, postID, attID)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	reader, err := s.objects.Get(ctx, att.ObjectKey)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	return att, reader, nil
}
