package routes

import (
	"errors"
	"net/http"
	"strconv"

	applog "taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

// redirectHome is the response to every successful form submission.
func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// parseTaskID reads the :id path parameter. Anything that is not a positive integer
// matches no task.
func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return 0, false
	}
	return uint(id), true
}

// renderError maps service errors to responses.
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this task"})
	case errors.Is(err, services.ErrValidation):
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve.Fields})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		applog.Get().Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// renderInvalid re-renders a form view with its field errors and the submitted values.
func renderInvalid(c *gin.Context, view string, err error, input gin.H) {
	var ve *services.ValidationError
	if !errors.As(err, &ve) {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"view":   view,
		"errors": ve.Fields,
		"input":  input,
	})
}
