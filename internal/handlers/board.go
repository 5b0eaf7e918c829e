package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/internal/store"
	"github.com/dongwook32/web-hub/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPage        = 1
	defaultLimit       = 20
	maxLimit           = 100
	maxMultipartMemory = 16 << 20
	maxAttachmentBytes = 10 << 20
	formFieldFile      = "file"
)

// BoardHandler provides HTTP handlers for the bulletin board.
type BoardHandler struct {
	board *services.BoardService
}

// NewBoardHandler constructs a handler with the provided service.
func NewBoardHandler(board *services.BoardService) *BoardHandler {
	return &BoardHandler{board: board}
}

// BoardRouter registers board routes on the given router. Write
// operations require the session middleware.
func BoardRouter(r chi.Router, board *services.BoardService, requireSession func(http.Handler) http.Handler) {
	handler := NewBoardHandler(board)

	r.Get("/", handler.ListPosts)
	r.With(requireSession).Post("/", handler.CreatePost)
	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", handler.GetPost)
		r.With(requireSession).Post("/comments", handler.CreateComment)
		r.With(requireSession).Post("/like", handler.ToggleLike)
		r.With(requireSession).Post("/attachments", handler.UploadAttachment)
		r.Get("/attachments/{attachmentID}", handler.GetAttachment)
	})
}

func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.board.ListBoards(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list boards")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

// ListPosts returns posts newest first, optionally filtered by board.
func (h *BoardHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	boardID := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("board")); raw != "" {
		boardID, err = strconv.Atoi(raw)
		if err != nil || boardID < 1 {
			writeError(w, http.StatusBadRequest, "invalid board")
			return
		}
	}

	posts, total, err := h.board.ListPosts(r.Context(), boardID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, PostListResponse{
		Posts: posts,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *BoardHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, comments, err := h.board.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch post")
		return
	}

	writeJSON(w, http.StatusOK, PostDetailResponse{Post: post, Comments: comments})
}

func (h *BoardHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.board.CreatePost(r.Context(), types.Post{
		UserID:  user.ID,
		BoardID: req.BoardID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyContent) {
			writeError(w, http.StatusBadRequest, "title and content are required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	created.AuthorNickname = user.Nickname

	writeJSON(w, http.StatusCreated, created)
}

func (h *BoardHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.board.CreateComment(r.Context(), types.Comment{
		PostID:   postID,
		UserID:   user.ID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "content is required")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create comment")
		}
		return
	}
	created.AuthorNickname = user.Nickname

	writeJSON(w, http.StatusCreated, created)
}

func (h *BoardHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	liked, count, err := h.board.ToggleLike(r.Context(), user.ID, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to toggle like")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": count})
}

func (h *BoardHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldFile]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one file is required")
		return
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	data, err := readFileLimited(file, maxAttachmentBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	att, err := h.board.AddAttachment(r.Context(), postID, fileHeader.Filename, contentType, data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, "attachments are not enabled")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to store attachment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

func (h *BoardHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	attID, err := strconv.Atoi(chi.URLParam(r, "attachmentID"))
	if err != nil || attID < 1 {
		writeError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	att, reader, err := h.board.OpenAttachment(r.Context(), postID, attID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, "attachments are not enabled")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "attachment not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch attachment")
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
	_, _ = io.Copy(w, reader)
}

type CreatePostRequest struct {
	BoardID *int   `json:"board_id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	ParentID *int   `json:"parent_id,omitempty"`
	Content  string `json:"content"`
}

// PostListResponse is the paginated list response payload.
type PostListResponse struct {
	Posts []types.Post `json:"posts"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

type PostDetailResponse struct {
	Post     types.Post      `json:"post"`
	Comments []types.Comment `json:"comments"`
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

func parsePostID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "postID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
