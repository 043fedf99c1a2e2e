package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Common auth errors
var (
	ErrTokenMissing      = errors.New("Authentication required")
	ErrInvalidAuthFormat = errors.New("Authorization header format must be Bearer {token}")
	ErrInvalidToken      = errors.New("Invalid or expired token")
)

// SessionClaims binds a signed token to a server-side session record.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    uint   `json:"uid"`
	jwt.RegisteredClaims
}

// ValidateToken validates a session token string and returns the claims
func ValidateToken(tokenString string, secret []byte, opts ...jwt.ParserOption) (*SessionClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// GenerateToken signs a token for the given session
func GenerateToken(sessionID string, userID uint, secret []byte, issuedAt, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
			IssuedAt:  jwt.NewNumericDate(issuedAt.UTC()),
			NotBefore: jwt.NewNumericDate(issuedAt.UTC()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// ExtractToken reads the session token from the cookie, then the Authorization header,
// then the "token" query parameter (websocket clients cannot set headers).
func ExtractToken(c *gin.Context, cookieName string) (string, error) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, nil
	}

	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", ErrInvalidAuthFormat
		}
		return parts[1], nil
	}

	if token := c.Query("token"); token != "" {
		return token, nil
	}

	return "", ErrTokenMissing
}
