package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readrally/readrally/utils"
)

func TestMain(m *testing.M) {
	// Config refuses to load without a signing secret
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newAuthTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(ctx *gin.Context) {
		id, _ := ctx.Get(ContextUserIDKey)
		name, _ := ctx.Get(ContextUsernameKey)
		ctx.JSON(http.StatusOK, gin.H{"user_id": id, "username": name})
	})
	return r
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	r := newAuthTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	r := newAuthTestRouter()

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthRequiredGarbageToken(t *testing.T) {
	r := newAuthTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredValidToken(t *testing.T) {
	token, err := utils.GenerateToken(42, "ada", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	r := newAuthTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	token, err := utils.GenerateToken(42, "ada", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	r := newAuthTestRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
