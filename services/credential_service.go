package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskdesk/taskdesk/broker"
	"taskdesk/taskdesk/database"
	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/metrics"
	"taskdesk/taskdesk/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CredentialServiceInterface interface {
	Register(ctx context.Context, email, name, password string) (models.User, error)
	Verify(ctx context.Context, email, password string) (models.User, error)
	GetUser(ctx context.Context, id uint) (models.User, error)
}

type CredentialService struct {
	db     *database.Database
	cost   int
	events EventPublisher
	// dummyHash is compared against when the email is unknown so both failure paths cost a bcrypt run.
	dummyHash []byte
}

func NewCredentialService(db *database.Database, cost int, events EventPublisher) *CredentialService {
	s := &CredentialService{db: db, cost: cost, events: events}
	if hash, err := s.HashPassword("taskdesk-placeholder-password"); err == nil {
		s.dummyHash = []byte(hash)
	}
	return s
}

// Register stores a new user. Email uniqueness is enforced by the unique index inside the
// single INSERT, so concurrent signups with the same email cannot both succeed.
func (s *CredentialService) Register(ctx context.Context, email, name, password string) (models.User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.db.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
			return models.User{}, ErrDuplicateEmail
		}
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	applog.Get().Info().Uint("user_id", user.ID).Msg("user registered")

	publishEvent(ctx, s.events, broker.UserCreated, "user", user.ID, map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// Verify checks credentials. Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.db.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.dummyHash != nil {
				_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			}
			metrics.SigninsTotal.WithLabelValues("invalid").Inc()
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		metrics.SigninsTotal.WithLabelValues("invalid").Inc()
		return models.User{}, ErrInvalidCredentials
	}

	metrics.SigninsTotal.WithLabelValues("success").Inc()
	return user, nil
}

func (s *CredentialService) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *CredentialService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *CredentialService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
