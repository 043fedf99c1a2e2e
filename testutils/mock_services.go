package testutils

import (
	"context"
	"time"

	"taskdesk/taskdesk/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockTaskService mocks the TaskServiceInterface for testing
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(ctx context.Context, actor uint, fields models.TaskFields) (models.Task, error) {
	args := m.Called(ctx, actor, fields)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) ListOpen(ctx context.Context, actor uint) ([]models.Task, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskService) ListResolved(ctx context.Context, actor uint) ([]models.Task, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskService) CountOpen(ctx context.Context, actor uint) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskService) CountResolved(ctx context.Context, actor uint) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, actor uint, id uint) (models.Task, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, actor uint, id uint, update models.TaskUpdate) (models.Task, error) {
	args := m.Called(ctx, actor, id, update)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) ResolveTask(ctx context.Context, actor uint, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, actor uint, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockCredentialService is a mock implementation of CredentialServiceInterface
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) Register(ctx context.Context, email, name, password string) (models.User, error) {
	args := m.Called(ctx, email, name, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockCredentialService) Verify(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockCredentialService) GetUser(ctx context.Context, id uint) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

// MockSessionService is a mock implementation of SessionServiceInterface
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) EstablishSession(ctx context.Context, userID uint) (string, time.Time, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockSessionService) CurrentUser(ctx context.Context, token string) (uint, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockSessionService) EndSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionService) EndUserSessions(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockWebSocketService is a mock implementation of WebSocketServiceInterface
type MockWebSocketService struct {
	mock.Mock
}

func (m *MockWebSocketService) HandleConnection(c *gin.Context, userID uint) {
	m.Called(c, userID)
}

func (m *MockWebSocketService) SendToUser(userID uint, message *models.StandardMessage) {
	m.Called(userID, message)
}

func (m *MockWebSocketService) ConnectionCount(userID uint) int {
	args := m.Called(userID)
	return args.Int(0)
}

func (m *MockWebSocketService) Stop() {
	m.Called()
}
