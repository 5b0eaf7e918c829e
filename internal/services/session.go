package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dongwook32/web-hub/internal/store"
	"github.com/dongwook32/web-hub/types"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// defaultSessionTTL is the absolute session lifetime, after which the
// session is no longer honored.
const defaultSessionTTL = time.Hour

// dummyHash keeps the login failure path constant-cost when the student
// ID does not exist, so timing never reveals which accounts are real.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no valid session")
)

// SessionClaims is the signed payload stored in the session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims
	Nickname string `json:"nickname"`
	IsAdmin  bool   `json:"is_admin"`
}

// SessionUserSource is the user lookup the authenticator needs.
type SessionUserSource interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByStudentID(ctx context.Context, studentID string) (types.User, error)
}

// SessionService validates credentials and issues/resolves signed
// session values with a bounded lifetime.
type SessionService struct {
	users  SessionUserSource
	secret []byte
	ttl    time.Duration
}

func NewSessionService(users SessionUserSource, secret string) *SessionService {
	return &SessionService{
		users:  users,
		secret: []byte(secret),
		ttl:    defaultSessionTTL,
	}
}

// Login verifies the credentials and returns the user plus a signed
// session value. Absent accounts and wrong passwords fail identically.
func (s *SessionService) Login(ctx context.Context, studentID, password string) (types.User, string, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" || password == "" {
		return types.User{}, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return types.User{}, "", ErrInvalidCredentials
		}
		return types.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return types.User{}, "", err
	}
	return user, token, nil
}

// Resolve maps a session cookie value back to its user. Expired, absent,
// or tampered values all report ErrNoSession.
func (s *SessionService) Resolve(ctx context.Context, value string) (types.User, error) {
	if strings.TrimSpace(value) == "" {
		return types.User{}, ErrNoSession
	}

	claims := SessionClaims{}
	token, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return types.User{}, ErrNoSession
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID < 1 {
		return types.User{}, ErrNoSession
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrNoSession
		}
		return types.User{}, err
	}
	return user, nil
}

// TTL reports the session lifetime, used for the cookie max-age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) issue(user types.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Nickname: user.Nickname,
		IsAdmin:  user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
