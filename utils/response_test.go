package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func performResponse(register func(*gin.Engine)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := performResponse(func(r *gin.Engine) {
		r.GET("/", func(ctx *gin.Context) {
			Success(ctx, gin.H{"value": 7})
		})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Code != 0 || body.Message != "success" {
		t.Errorf("envelope = code %d message %q, want 0/success", body.Code, body.Message)
	}
	if body.Reason != "" {
		t.Errorf("success carried a reason %q", body.Reason)
	}
}

func TestFailEnvelopeCarriesReason(t *testing.T) {
	w := performResponse(func(r *gin.Engine) {
		r.GET("/", func(ctx *gin.Context) {
			Fail(ctx, http.StatusConflict, 40930, "already-checked-in", "already checked in today")
		})
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var body JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Reason != "already-checked-in" {
		t.Errorf("reason = %q, want already-checked-in", body.Reason)
	}
	if body.Code != 40930 {
		t.Errorf("code = %d, want 40930", body.Code)
	}
}

func TestErrorEnvelopeHasNoReason(t *testing.T) {
	w := performResponse(func(r *gin.Engine) {
		r.GET("/", func(ctx *gin.Context) {
			Error(ctx, http.StatusInternalServerError, 50001, "boom")
		})
	})

	var body JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Reason != "" {
		t.Errorf("generic error carried a reason %q", body.Reason)
	}
	if body.Message != "boom" {
		t.Errorf("message = %q, want boom", body.Message)
	}
}
