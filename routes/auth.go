package routes

import (
	"net/http"
	"time"

	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/services"
	"taskdesk/taskdesk/utils/token"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email    string `form:"email" json:"email"`
	Name     string `form:"name" json:"name"`
	Password string `form:"password" json:"password"`
}

type signinRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// CookieSettings control the session cookie written on signin.
type CookieSettings struct {
	Name   string
	Secure bool
}

func RegisterAuthRoutes(router gin.IRouter, credentials services.CredentialServiceInterface, sessions services.SessionServiceInterface, cookie CookieSettings) {
	router.GET("/signup", func(c *gin.Context) { ShowAuthForm(c, "signup") })
	router.POST("/signup", func(c *gin.Context) { Signup(c, credentials, sessions, cookie) })
	router.GET("/signin", func(c *gin.Context) { ShowAuthForm(c, "signin") })
	router.POST("/signin", func(c *gin.Context) { Signin(c, credentials, sessions, cookie) })
	router.GET("/logout", func(c *gin.Context) { Logout(c, sessions, cookie) })
	router.POST("/logout", func(c *gin.Context) { Logout(c, sessions, cookie) })
}

// ShowAuthForm renders an empty signup or signin form. Signed-in users go home.
func ShowAuthForm(c *gin.Context, view string) {
	if middleware.CurrentUserID(c) != models.Anonymous {
		redirectHome(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": view})
}

func Signup(c *gin.Context, credentials services.CredentialServiceInterface, sessions services.SessionServiceInterface, cookie CookieSettings) {
	var request signupRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The password is never echoed back.
	input := gin.H{"email": request.Email, "name": request.Name}
	fields, err := services.NormalizeSignupForm(request.Email, request.Name, request.Password)
	if err != nil {
		renderInvalid(c, "signup", err, input)
		return
	}

	user, err := credentials.Register(c.Request.Context(), fields.Email, fields.Name, fields.Password)
	if err != nil {
		renderError(c, err)
		return
	}

	startSession(c, sessions, cookie, user.ID)
}

func Signin(c *gin.Context, credentials services.CredentialServiceInterface, sessions services.SessionServiceInterface, cookie CookieSettings) {
	var request signinRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := gin.H{"email": request.Email}
	fields, err := services.NormalizeSigninForm(request.Email, request.Password)
	if err != nil {
		renderInvalid(c, "signin", err, input)
		return
	}

	user, err := credentials.Verify(c.Request.Context(), fields.Email, fields.Password)
	if err != nil {
		renderError(c, err)
		return
	}

	startSession(c, sessions, cookie, user.ID)
}

// Logout ends the caller's session. It succeeds even without one.
func Logout(c *gin.Context, sessions services.SessionServiceInterface, cookie CookieSettings) {
	if tokenString, err := token.ExtractToken(c, cookie.Name); err == nil {
		if err := sessions.EndSession(c.Request.Context(), tokenString); err != nil {
			renderError(c, err)
			return
		}
	}

	setSessionCookie(c, cookie, "", -1)
	redirectHome(c)
}

func startSession(c *gin.Context, sessions services.SessionServiceInterface, cookie CookieSettings, userID uint) {
	tokenString, expiresAt, err := sessions.EstablishSession(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 1
	}
	setSessionCookie(c, cookie, tokenString, maxAge)
	redirectHome(c)
}

func setSessionCookie(c *gin.Context, cookie CookieSettings, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, value, maxAge, "/", "", cookie.Secure, true)
}
