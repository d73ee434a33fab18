package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, subject, role string, expiry time.Duration) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	subject := uuid.New()
	v := NewVerifier(testSecret)

	claims, err := v.Verify(signToken(t, testSecret, subject.String(), RoleStudent, time.Hour))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Role != RoleStudent {
		t.Fatalf("expected student role, got %q", claims.Role)
	}
	id, err := claims.SubjectID()
	if err != nil || id != subject {
		t.Fatalf("subject mismatch: %v %v", id, err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := NewVerifier(testSecret)

	if _, err := v.Verify(signToken(t, "other-secret", uuid.NewString(), RoleStudent, time.Hour)); err == nil {
		t.Fatal("token signed with a different secret must fail")
	}
	if _, err := v.Verify(signToken(t, testSecret, uuid.NewString(), RoleStudent, -time.Minute)); err == nil {
		t.Fatal("expired token must fail")
	}
	if _, err := v.Verify(signToken(t, testSecret, "not-a-uuid", RoleStudent, time.Hour)); err == nil {
		t.Fatal("non-uuid subject must fail")
	}
	if _, err := v.Verify("garbage"); err == nil {
		t.Fatal("malformed token must fail")
	}
}

func setupProtectedRoute(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		id, ok := GetSubjectID(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no subject")
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestRequireStudent(t *testing.T) {
	v := NewVerifier(testSecret)
	r := setupProtectedRoute(RequireStudent(v))
	subject := uuid.New()

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"valid student", "Bearer " + signToken(t, testSecret, subject.String(), RoleStudent, time.Hour), http.StatusOK},
		{"admin token on student route", "Bearer " + signToken(t, testSecret, subject.String(), RoleAdmin, time.Hour), http.StatusForbidden},
		{"wrong secret", "Bearer " + signToken(t, "nope", subject.String(), RoleStudent, time.Hour), http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != subject.String() {
				t.Fatalf("subject not threaded through context: %s", rec.Body.String())
			}
		})
	}
}

func TestRequireStudentWSAuthUsesQueryToken(t *testing.T) {
	v := NewVerifier(testSecret)
	r := setupProtectedRoute(RequireStudentWSAuth(v))
	subject := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+signToken(t, testSecret, subject.String(), RoleStudent, time.Hour), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token should be 401, got %d", rec.Code)
	}
}
