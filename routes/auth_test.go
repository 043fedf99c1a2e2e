package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/services"
	"taskdesk/taskdesk/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCookie = CookieSettings{Name: "taskdesk_session", Secure: false}

func setupAuthRouter(userID uint) (*gin.Engine, *testutils.MockCredentialService, *testutils.MockSessionService) {
	gin.SetMode(gin.TestMode)
	creds := new(testutils.MockCredentialService)
	sessions := new(testutils.MockSessionService)

	router := gin.New()
	router.Use(testutils.WithUser(userID))
	RegisterAuthRoutes(router, creds, sessions, testCookie)
	return router, creds, sessions
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie.Name {
			return c
		}
	}
	return nil
}

func TestSignup_EstablishesSession(t *testing.T) {
	router, creds, sessions := setupAuthRouter(models.Anonymous)
	creds.On("Register", mock.Anything, "a@x.com", "A", "pw1").Return(models.User{ID: 1, Email: "a@x.com"}, nil)
	sessions.On("EstablishSession", mock.Anything, uint(1)).Return("signed-token", time.Now().Add(time.Hour), nil)

	w := postForm(router, "/signup", url.Values{"email": {"a@x.com"}, "name": {"A"}, "password": {"pw1"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Greater(t, cookie.MaxAge, 0)
	creds.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router, creds, sessions := setupAuthRouter(models.Anonymous)
	creds.On("Register", mock.Anything, "a@x.com", "A", "pw1").Return(models.User{}, services.ErrDuplicateEmail)

	w := postForm(router, "/signup", url.Values{"email": {"a@x.com"}, "name": {"A"}, "password": {"pw1"}})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Nil(t, sessionCookie(w))
	sessions.AssertNotCalled(t, "EstablishSession", mock.Anything, mock.Anything)
}

func TestSignup_InvalidFormDoesNotEchoPassword(t *testing.T) {
	router, creds, _ := setupAuthRouter(models.Anonymous)

	w := postForm(router, "/signup", url.Values{"email": {"nope"}, "name": {""}, "password": {"hunter2"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	creds.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignin_Success(t *testing.T) {
	router, creds, sessions := setupAuthRouter(models.Anonymous)
	creds.On("Verify", mock.Anything, "a@x.com", "pw1").Return(models.User{ID: 3}, nil)
	sessions.On("EstablishSession", mock.Anything, uint(3)).Return("tok", time.Now().Add(time.Hour), nil)

	w := postForm(router, "/signin", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	require.NotNil(t, sessionCookie(w))
}

func TestSignin_InvalidCredentials(t *testing.T) {
	router, creds, _ := setupAuthRouter(models.Anonymous)
	creds.On("Verify", mock.Anything, "a@x.com", "wrong").Return(models.User{}, services.ErrInvalidCredentials)

	w := postForm(router, "/signin", url.Values{"email": {"a@x.com"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, w.Body.String())
}

func TestLogout_EndsSessionAndClearsCookie(t *testing.T) {
	router, _, sessions := setupAuthRouter(1)
	sessions.On("EndSession", mock.Anything, "tok").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/logout", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: "tok"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
	sessions.AssertExpectations(t)
}

func TestLogout_WithoutSession(t *testing.T) {
	router, _, sessions := setupAuthRouter(models.Anonymous)

	w := get(router, "/logout")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	sessions.AssertNotCalled(t, "EndSession", mock.Anything, mock.Anything)
}

func TestShowAuthForm(t *testing.T) {
	router, _, _ := setupAuthRouter(models.Anonymous)
	w := get(router, "/signup")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"view":"signup"}`, w.Body.String())

	signedIn, _, _ := setupAuthRouter(2)
	w = get(signedIn, "/signin")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}
