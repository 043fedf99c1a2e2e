package services

import (
	"context"
	"errors"
	"testing"

	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_ThenVerify(t *testing.T) {
	db := testutils.SetupTestDB(t)
	events := &testutils.RecordingPublisher{}
	svc := NewCredentialService(db, bcrypt.MinCost, events)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "A", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	verified, err := svc.Verify(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
	assert.Equal(t, "A", verified.Name)

	assert.Equal(t, []string{"user.created"}, events.EventNames())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewCredentialService(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "First", "secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dup@example.com", "Second", "other")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var count int64
	require.NoError(t, db.DB.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	user, err := svc.Verify(ctx, "dup@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "First", user.Name)
}

func TestVerify_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewCredentialService(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "known@example.com", "Known", "right")
	require.NoError(t, err)

	_, wrongPassword := svc.Verify(ctx, "known@example.com", "wrong")
	_, unknownEmail := svc.Verify(ctx, "nobody@example.com", "right")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestGetUser(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := NewCredentialService(db, bcrypt.MinCost, nil)

	user, err := svc.Register(context.Background(), "me@example.com", "Me", "pw")
	require.NoError(t, err)

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)

	_, err = svc.GetUser(context.Background(), user.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerify_DatabaseErrorIsNotInvalidCredentials(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("a@x.com", 1).
		WillReturnError(errors.New("connection refused"))

	svc := NewCredentialService(db, bcrypt.MinCost, nil)
	_, err := svc.Verify(context.Background(), "a@x.com", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHashPassword_Salted(t *testing.T) {
	svc := &CredentialService{cost: bcrypt.MinCost}

	first, err := svc.HashPassword("same")
	require.NoError(t, err)
	second, err := svc.HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, svc.ComparePasswords(first, "same"))
	assert.NoError(t, svc.ComparePasswords(second, "same"))
	assert.Error(t, svc.ComparePasswords(first, "different"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
