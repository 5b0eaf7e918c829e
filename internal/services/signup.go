package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dongwook32/web-hub/internal/events"
	"github.com/dongwook32/web-hub/internal/notify"
	"github.com/dongwook32/web-hub/internal/store"
	"github.com/dongwook32/web-hub/types"
	"golang.org/x/crypto/bcrypt"
)

// Signup flow errors surfaced to handlers.
var (
	ErrEmailDomain   = errors.New("email is not a school address")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidToken  = errors.New("invalid or expired verification token")
	ErrMissingFields = errors.New("missing required fields")
)

// VerificationRepository defines persistence operations for tokens,
// including the atomic token-for-account exchange.
type VerificationRepository interface {
	CreateToken(ctx context.Context, email string) (types.EmailVerification, error)
	GetByToken(ctx context.Context, token string) (types.EmailVerification, error)
	CreateUserConsumingToken(ctx context.Context, user types.User, tokenID int) (types.User, error)
}

// UserDirectory is the read-only view of users the signup flow needs
// for its uniqueness checks.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByStudentID(ctx context.Context, studentID string) (types.User, error)
	GetByNickname(ctx context.Context, nickname string) (types.User, error)
}

// SignupRequest carries the profile fields exchanged for an account.
type SignupRequest struct {
	Token     string
	StudentID string
	Name      string
	Nickname  string
	Password  string
	Birthdate *time.Time
	Status    string
}

// SignupService orchestrates the email-verification-gated signup flow:
// request verification, issue token, notify, exchange token for account.
type SignupService struct {
	tokens   VerificationRepository
	users    UserDirectory
	notifier notify.Notifier
	bus      *events.Publisher
	domain   string
	appURL   string
}

func NewSignupService(tokens VerificationRepository, users UserDirectory, notifier notify.Notifier, bus *events.Publisher, domain, appURL string) *SignupService {
	return &SignupService{
		tokens:   tokens,
		users:    users,
		notifier: notifier,
		bus:      bus,
		domain:   strings.ToLower(strings.TrimSpace(domain)),
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// BeginVerification checks eligibility, persists a fresh token, and sends
// the verification link. The send happens inline; a delivery failure is
// reported to the caller once and the token stays live. There is no rate
// limit: repeated calls create additional live tokens for the email.
func (s *SignupService) BeginVerification(ctx context.Context, email string) (types.EmailVerification, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.HasSuffix(email, "@"+s.domain) {
		return types.EmailVerification{}, ErrEmailDomain
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.EmailVerification{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.EmailVerification{}, fmt.Errorf("check existing account: %w", err)
	}

	v, err := s.tokens.CreateToken(ctx, email)
	if err != nil {
		return types.EmailVerification{}, fmt.Errorf("create verification token: %w", err)
	}

	link := s.appURL + "/verify/" + v.Token
	body := verificationMailBody(link)
	if err := s.notifier.Send(ctx, email, "KBU Hub 이메일 인증", body); err != nil {
		return v, fmt.Errorf("send verification mail: %w", err)
	}
	return v, nil
}

// VerifyToken reports whether a token is still pending and usable.
func (s *SignupService) VerifyToken(ctx context.Context, token string) (types.EmailVerification, error) {
	v, err := s.tokens.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.EmailVerification{}, ErrInvalidToken
		}
		return types.EmailVerification{}, err
	}
	if v.Expired(time.Now()) {
		return types.EmailVerification{}, ErrInvalidToken
	}
	return v, nil
}

// CompleteSignup exchanges a pending token plus profile fields for a new
// account. The account insert and the token delete are one unit of work:
// on any failure, including a uniqueness conflict, the token survives and
// no user exists.
func (s *SignupService) CompleteSignup(ctx context.Context, req SignupRequest) (types.User, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.StudentID == "" || req.Name == "" || req.Nickname == "" || req.Password == "" {
		return types.User{}, ErrMissingFields
	}

	v, err := s.VerifyToken(ctx, req.Token)
	if err != nil {
		return types.User{}, err
	}

	if _, err := s.users.GetByStudentID(ctx, req.StudentID); err == nil {
		return types.User{}, store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check student id: %w", err)
	}
	if _, err := s.users.GetByNickname(ctx, req.Nickname); err == nil {
		return types.User{}, store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check nickname: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.tokens.CreateUserConsumingToken(ctx, types.User{
		StudentID:    req.StudentID,
		Name:         req.Name,
		Nickname:     req.Nickname,
		Email:        v.Email,
		Birthdate:    req.Birthdate,
		Status:       strings.TrimSpace(req.Status),
		PasswordHash: string(hashed),
	}, v.ID)
	if err != nil {
		// The token vanished between lookup and exchange: another
		// request consumed it first.
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidToken
		}
		return types.User{}, err
	}

	s.bus.Publish(ctx, events.ChannelUsers, events.UserSignedUp, map[string]any{
		"user_id":    user.ID,
		"student_id": user.StudentID,
		"nickname":   user.Nickname,
	})
	return user, nil
}

func verificationMailBody(link string) string {
	return `<h1>KBU Hub</h1>
<p>아래 링크를 눌러 학교 이메일 인증을 완료해 주세요. 링크는 30분 동안 유효합니다.</p>
<a href="` + link + `">이메일 인증하기</a>`
}
