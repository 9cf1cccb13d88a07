package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Kullanıcı adı veya şifre hatalı")
	ErrSessionExpired     = apperr.Unauthorized("Geçersiz veya süresi dolmuş oturum")
)

// UserRepository: kimlik doğrulamanın ihtiyaç duyduğu kullanıcı sorguları.
type UserRepository interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserWithAccess(ctx context.Context, id uint) (*models.User, error)
}

type Service struct {
	users    UserRepository
	sessions SessionStore
	secret   string
	ttl      time.Duration
	now      func() time.Time
}

func NewService(users UserRepository, sessions SessionStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, sessions: sessions, secret: secret, ttl: ttl, now: time.Now}
}

// Bilinmeyen kullanıcı adında da bir bcrypt karşılaştırması yapılır,
// yanıt süresi var olan kullanıcıyla aynı kalsın diye.
var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("medwaste-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login kimlik bilgilerini doğrular ve yeni bir oturum açar. Bilinmeyen kullanıcı,
// pasif kullanıcı ve yanlış şifre aynı hatayı döner.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)

	u, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			compareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	token, err := GenerateToken(s.secret, sess.ID, u.ID, now, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

// Authenticate token'ı doğrular, oturumu depodan bulur ve güncel rol/hastane
// üyelikleriyle kimliği kurar.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	u, err := s.users.GetUserWithAccess(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrSessionExpired
	}
	return NewIdentity(u, sess.ID), nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Profile: /api/auth/me için kullanıcıyı üyelikleriyle getirir.
func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.GetUserWithAccess(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return u, nil
}
