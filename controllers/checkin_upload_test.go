package controllers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	// Config refuses to load without a signing secret
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func uploadTestContext(req *http.Request) *gin.Context {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = req
	return ctx
}

func multipartRequest(t *testing.T, build func(*multipart.Writer)) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	build(w)
	if err := w.Close(); err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSaveCheckinImageAbsentField(t *testing.T) {
	req := multipartRequest(t, func(w *multipart.Writer) {
		_ = w.WriteField("title", "chapter four")
	})

	url, err := saveCheckinImage(uploadTestContext(req), 1)
	if err != nil {
		t.Fatalf("no image attached should not fail: %v", err)
	}
	if url != "" {
		t.Errorf("url = %q, want empty for missing image", url)
	}
}

func TestSaveCheckinImageNonMultipartBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("title=chapter+four"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	url, err := saveCheckinImage(uploadTestContext(req), 1)
	if err != nil {
		t.Fatalf("form body without an image should not fail: %v", err)
	}
	if url != "" {
		t.Errorf("url = %q, want empty", url)
	}
}

func TestSaveCheckinImageTruncatedPartFails(t *testing.T) {
	// A file part that ends before its closing boundary must surface as an
	// upload failure, not as a check-in without an image.
	body := "--frame\r\n" +
		"Content-Disposition: form-data; name=\"image\"; filename=\"cover.png\"\r\n" +
		"Content-Type: image/png\r\n\r\n" +
		"truncated-bytes"
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=frame")

	url, err := saveCheckinImage(uploadTestContext(req), 1)
	if err == nil {
		t.Fatal("truncated multipart part was accepted as no-image")
	}
	if url != "" {
		t.Errorf("url = %q, want empty on failure", url)
	}
}

func TestSaveCheckinImageRejectsUnsupportedExtension(t *testing.T) {
	req := multipartRequest(t, func(w *multipart.Writer) {
		fw, err := w.CreateFormFile("image", "notes.txt")
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		_, _ = io.WriteString(fw, "not an image")
	})

	url, err := saveCheckinImage(uploadTestContext(req), 1)
	if err == nil {
		t.Fatal("non-image extension was accepted")
	}
	if !strings.Contains(err.Error(), "unsupported image type") {
		t.Errorf("error = %q, want unsupported image type", err)
	}
	if url != "" {
		t.Errorf("url = %q, want empty on rejection", url)
	}
}
