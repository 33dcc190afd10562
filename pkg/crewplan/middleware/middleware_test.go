package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRequestIDGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/ping", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if seen == "" {
		t.Fatal("Expected a generated request id in context")
	}
	if got := resp.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("Expected client id to be kept, got %q", got)
	}
}

func TestRequestLoggerClassifiesStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	cases := []struct {
		path  string
		level string
	}{
		{"/ok", "info"},
		{"/missing", "warn"},
		{"/boom", "error"},
	}
	for _, tc := range cases {
		buf.Reset()
		req, _ := http.NewRequest("GET", tc.path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to decode log line for %s: %v", tc.path, err)
		}
		if entry["level"] != tc.level {
			t.Errorf("Expected level %s for %s, got %v", tc.level, tc.path, entry["level"])
		}
		if entry["path"] != tc.path {
			t.Errorf("Expected path %s, got %v", tc.path, entry["path"])
		}
		if entry["request_id"] == "" {
			t.Errorf("Expected request_id in log line for %s", tc.path)
		}
	}
}
