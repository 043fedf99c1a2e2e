package testutils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetTestGinContext(w http.ResponseWriter, req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

// WithUser returns middleware that marks every request as coming from userID,
// standing in for the session middleware in route tests.
func WithUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}
