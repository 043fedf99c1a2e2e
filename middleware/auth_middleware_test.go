package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskdesk/taskdesk/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	users map[string]uint
	err   error
}

func (s stubResolver) CurrentUser(ctx context.Context, tokenString string) (uint, error) {
	if s.err != nil {
		return models.Anonymous, s.err
	}
	return s.users[tokenString], nil
}

func newRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware(resolver, "sid"))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestSessionMiddleware_Cookie(t *testing.T) {
	router := newRouter(stubResolver{users: map[string]uint{"good": 12}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "good"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":12}`, w.Body.String())
}

func TestSessionMiddleware_BearerHeader(t *testing.T) {
	router := newRouter(stubResolver{users: map[string]uint{"good": 12}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSessionMiddleware_AnonymousWithoutToken(t *testing.T) {
	router := newRouter(stubResolver{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	router := newRouter(stubResolver{users: map[string]uint{}})

	for _, header := range []string{"", "Bearer unknown", "Token abc"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())
	}
}

func TestSessionMiddleware_StoreError(t *testing.T) {
	router := newRouter(stubResolver{err: errors.New("redis down")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "any"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCurrentUserID_WrongType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(userIDKey, "12")
	assert.Equal(t, models.Anonymous, CurrentUserID(c))
}
