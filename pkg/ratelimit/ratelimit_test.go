package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAllowPerClient(t *testing.T) {
	rl := New(Config{Rate: 1, Burst: 2})
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected third immediate request to be limited")
	}
	// another client has its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("expected independent client to be allowed")
	}
	if rl.Len() != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", rl.Len())
	}
}

func TestCleanupRemovesStaleEntries(t *testing.T) {
	rl := New(Config{Rate: 1, Burst: 1, CleanupInterval: 10 * time.Millisecond, MaxAge: 20 * time.Millisecond})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	if rl.Len() != 1 {
		t.Fatalf("expected 1 tracked client")
	}

	deadline := time.Now().Add(2 * time.Second)
	for rl.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stale entry was never cleaned up")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := New(Config{Rate: 1, Burst: 1})
	defer rl.Stop()

	router := gin.New()
	router.POST("/review", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/review", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", code)
	}
}
