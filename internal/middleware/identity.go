package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/response"
)

const (
	// ContextKeyClaims is the Gin context key for verified identity claims.
	ContextKeyClaims = "claims"

	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Claims is the token payload issued by the external identity provider. The
// subject is the student or admin UUID; this service verifies, never issues.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// SubjectID parses the token subject as a UUID.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Verifier checks bearer tokens against the shared identity-provider secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given HS256 secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a token string.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, fmt.Errorf("token subject is not a uuid: %w", err)
	}
	return claims, nil
}

// RequireStudent validates a student token from the Authorization header.
func RequireStudent(verifier *Verifier) gin.HandlerFunc {
	return requireRole(verifier, RoleStudent, response.ErrStudentAccessOnly)
}

// RequireAdmin validates an admin token from the Authorization header.
func RequireAdmin(verifier *Verifier) gin.HandlerFunc {
	return requireRole(verifier, RoleAdmin, response.ErrAdminAccessOnly)
}

func requireRole(verifier *Verifier, role string, roleErr response.ErrCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndVerifyClaims(c, verifier)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.Role != role {
			response.AbortFail(c, http.StatusForbidden, roleErr)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireStudentWSAuth validates a student token from the query param
// ?token=... Used for WebSocket upgrade requests, which cannot send headers.
func RequireStudentWSAuth(verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.Role != RoleStudent {
			response.AbortFail(c, http.StatusForbidden, response.ErrStudentAccessOnly)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the verified claims from the Gin context.
func GetClaims(c *gin.Context) *Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetSubjectID retrieves the caller's UUID from the verified claims.
func GetSubjectID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.SubjectID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func extractAndVerifyClaims(c *gin.Context, verifier *Verifier) (*Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	if tokenStr == "" {
		return nil, errors.New("authorization header or token query required")
	}

	return verifier.Verify(tokenStr)
}
