package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/internal/store"
	"github.com/dongwook32/web-hub/types"
)

type postRepoStub struct {
	posts    map[int]types.Post
	comments map[int][]types.Comment
	likes    map[[2]int]bool
	nextID   int
}

func newPostRepoStub() *postRepoStub {
	return &postRepoStub{
		posts:    map[int]types.Post{},
		comments: map[int][]types.Comment{},
		likes:    map[[2]int]bool{},
	}
}

func (s *postRepoStub) List(ctx context.Context, boardID, offset, limit int) ([]types.Post, int, error) {
	var out []types.Post
	for _, p := range s.posts {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (s *postRepoStub) Get(ctx context.Context, id int) (types.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return p, nil
}

func (s *postRepoStub) Create(ctx context.Context, post types.Post) (types.Post, error) {
	s.nextID++
	post.ID = s.nextID
	s.posts[post.ID] = post
	return post, nil
}

func (s *postRepoStub) IncrementViews(ctx context.Context, id int) error {
	p, ok := s.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Views++
	s.posts[id] = p
	return nil
}

func (s *postRepoStub) ListComments(ctx context.Context, postID int) ([]types.Comment, error) {
	return s.comments[postID], nil
}

func (s *postRepoStub) CreateComment(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = len(s.comments[comment.PostID]) + 1
	s.comments[comment.PostID] = append(s.comments[comment.PostID], comment)
	return comment, nil
}

func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID int) (bool, int, error) {
	key := [2]int{userID, postID}
	if s.likes[key] {
		delete(s.likes, key)
	} else {
		s.likes[key] = true
	}
	count := 0
	for k := range s.likes {
		if k[1] == postID {
			count++
		}
	}
	return s.likes[key], count, nil
}

func (s *postRepoStub) CreateAttachment(ctx context.Context, att types.Attachment) (types.Attachment, error) {
	return att, nil
}

func (s *postRepoStub) GetAttachment(ctx context.Context, postID, attID int) (types.Attachment, error) {
	return types.Attachment{}, store.ErrNotFound
}

type boardListerStub struct{}

func (boardListerStub) List(ctx context.Context) ([]types.Board, error) {
	return []types.Board{{ID: 1, Name: "자유게시판"}}, nil
}

// fixedSession injects a fixed user, standing in for the auth middleware.
func fixedSession(user types.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

func newBoardRig(t *testing.T, user types.User) (*chi.Mux, *postRepoStub) {
	t.Helper()
	repo := newPostRepoStub()
	svc := services.NewBoardService(repo, boardListerStub{}, nil, nil)

	router := chi.NewRouter()
	router.Route("/posts", func(r chi.Router) {
		BoardRouter(r, svc, fixedSession(user))
	})
	return router, repo
}

func TestCreateAndGetPost(t *testing.T) {
	user := types.User{ID: 1, Nickname: "kim1"}
	router, _ := newBoardRig(t, user)

	rec := doJSON(t, router, http.MethodPost, "/posts/", `{"title":"첫 글","content":"hello"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created types.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "첫 글", created.Title)
	require.Equal(t, "kim1", created.AuthorNickname)

	rec = doJSON(t, router, http.MethodGet, "/posts/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail PostDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Equal(t, 1, detail.Post.Views)
	require.Empty(t, detail.Comments)
}

func TestCreatePostRejectsEmptyBody(t *testing.T) {
	router, _ := newBoardRig(t, types.User{ID: 1})

	rec := doJSON(t, router, http.MethodPost, "/posts/", `{"title":"  ","content":""}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPostNotFound(t *testing.T) {
	router, _ := newBoardRig(t, types.User{ID: 1})

	rec := doJSON(t, router, http.MethodGet, "/posts/99", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/posts/abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPostsPaginationParams(t *testing.T) {
	router, _ := newBoardRig(t, types.User{ID: 1})

	rec := doJSON(t, router, http.MethodGet, "/posts/?page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list PostListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Page)
	require.Equal(t, 10, list.Limit)

	rec = doJSON(t, router, http.MethodGet, "/posts/?page=0", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/posts/?limit=nope", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentOnPost(t *testing.T) {
	user := types.User{ID: 1, Nickname: "kim1"}
	router, repo := newBoardRig(t, user)
	repo.posts[1] = types.Post{ID: 1, UserID: 2, Title: "t", Content: "c"}
	repo.nextID = 1

	rec := doJSON(t, router, http.MethodPost, "/posts/1/comments", `{"content":"nice"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment types.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	require.Equal(t, "kim1", comment.AuthorNickname)

	rec = doJSON(t, router, http.MethodPost, "/posts/99/comments", `{"content":"nice"}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeToggleEndpoint(t *testing.T) {
	router, repo := newBoardRig(t, types.User{ID: 1})
	repo.posts[1] = types.Post{ID: 1, UserID: 2}

	rec := doJSON(t, router, http.MethodPost, "/posts/1/like", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["liked"])
	require.Equal(t, float64(1), resp["likes"])

	rec = doJSON(t, router, http.MethodPost, "/posts/1/like", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, false, resp["liked"])
	require.Equal(t, float64(0), resp["likes"])
}

func TestAttachmentsUnavailableWithoutStorage(t *testing.T) {
	router, repo := newBoardRig(t, types.User{ID: 1})
	repo.posts[1] = types.Post{ID: 1, UserID: 1}

	rec := doJSON(t, router, http.MethodGet, "/posts/1/attachments/1", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
