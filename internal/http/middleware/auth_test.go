package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authTestRouter(capture *int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(testSecret), func(c *gin.Context) {
		*capture = GetUserID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	var gotUserID int64
	r := authTestRouter(&gotUserID)

	token := signToken(t, jwt.MapClaims{
		"user_id": 5,
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUserID != 5 {
		t.Fatalf("expected user id 5, got %d", gotUserID)
	}
}

func TestRequireAuthRejectsMissingUserIDClaim(t *testing.T) {
	var gotUserID int64
	r := authTestRouter(&gotUserID)

	// Validly signed but without user_id: must never reach the handler,
	// since a zero user id downstream would skip ownership scoping.
	token := signToken(t, jwt.MapClaims{
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if gotUserID != 0 {
		t.Fatalf("handler should not have run, captured user id %d", gotUserID)
	}
}

func TestRequireAuthRejectsZeroUserID(t *testing.T) {
	var gotUserID int64
	r := authTestRouter(&gotUserID)

	token := signToken(t, jwt.MapClaims{
		"user_id": 0,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	var gotUserID int64
	r := authTestRouter(&gotUserID)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
