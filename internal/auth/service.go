package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-admin/internal/models"
)

type Service struct {
	db       *gorm.DB
	tokens   *Tokens
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
}

func NewService(db *gorm.DB, tokens *Tokens, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		db:       db,
		tokens:   tokens,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login checks an active staff user by email and password and opens a
// session. Unknown email, inactive user and wrong password all return
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.StaffUser
	err := s.db.WithContext(ctx).
		Where("email = ? AND active = ?", email, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, "", fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, "", ErrInvalidCredentials
	}

	now := s.now().UTC().Truncate(time.Second)
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.tokens.Sign(sess)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Session{}, "", fmt.Errorf("save session: %w", err)
	}

	return sess, token, nil
}

// Resolve returns the live session behind token.
func (s *Service) Resolve(ctx context.Context, token string) (Session, error) {
	claimed, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}

	sess, err := s.sessions.Get(ctx, claimed.ID)
	if err != nil {
		return Session{}, err
	}
	if sess.UserID != claimed.UserID {
		return Session{}, ErrInvalidToken
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, sess Session) error {
	return s.sessions.Delete(ctx, sess.ID)
}

// HashPassword is used by the admin seed.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
