package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/utils/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SessionServiceInterface interface {
	EstablishSession(ctx context.Context, userID uint) (string, time.Time, error)
	CurrentUser(ctx context.Context, tokenString string) (uint, error)
	EndSession(ctx context.Context, tokenString string) error
	EndUserSessions(ctx context.Context, userID uint) error
}

type SessionService struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(store SessionStore, secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// RequireAuthenticated is the gate in front of every task operation.
func RequireAuthenticated(actor uint) error {
	if actor == models.Anonymous {
		return ErrAuthenticationRequired
	}
	return nil
}

// EstablishSession records a new session for userID and returns its signed token.
func (s *SessionService) EstablishSession(ctx context.Context, userID uint) (string, time.Time, error) {
	if err := RequireAuthenticated(userID); err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	if err := s.store.PurgeExpired(ctx, now); err != nil {
		applog.Get().Warn().Err(err).Msg("failed to purge expired sessions")
	}

	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}

	signed, err := token.GenerateToken(session.ID, userID, s.secret, now, session.ExpiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	applog.Get().Debug().Uint("user_id", userID).Msg("session established")
	return signed, session.ExpiresAt, nil
}

// CurrentUser resolves a token to its user. Missing, invalid, ended and expired sessions
// resolve to models.Anonymous; only store failures are returned as errors.
func (s *SessionService) CurrentUser(ctx context.Context, tokenString string) (uint, error) {
	claims, ok := s.parse(tokenString)
	if !ok {
		return models.Anonymous, nil
	}

	session, err := s.store.Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return models.Anonymous, nil
		}
		return models.Anonymous, fmt.Errorf("find session: %w", err)
	}

	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return models.Anonymous, nil
	}
	return session.UserID, nil
}

// EndSession removes the session behind tokenString. Unknown tokens are ignored.
func (s *SessionService) EndSession(ctx context.Context, tokenString string) error {
	claims, ok := s.parse(tokenString)
	if !ok {
		return nil
	}
	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// EndUserSessions removes every session of userID.
func (s *SessionService) EndUserSessions(ctx context.Context, userID uint) error {
	if err := s.store.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (s *SessionService) parse(tokenString string) (*token.SessionClaims, bool) {
	if tokenString == "" {
		return nil, false
	}
	claims, err := token.ValidateToken(tokenString, s.secret, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, false
	}
	return claims, true
}
