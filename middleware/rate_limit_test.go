package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewIPRateLimiter(1, 2, time.Minute)
	r := gin.New()
	r.POST("/x", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if got := do("10.0.0.1"); got != http.StatusCreated {
			t.Fatalf("request %d: got %d, want 201", i, got)
		}
	}
	if got := do("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("after burst: got %d, want 429", got)
	}
	if got := do("10.0.0.2"); got != http.StatusCreated {
		t.Fatalf("other ip: got %d, want 201", got)
	}
}

func TestIPRateLimiterEvictsIdleVisitors(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter(10, 5, 5*time.Minute)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	rl.getLimiter("a")
	rl.getLimiter("b")
	if rl.Len() != 2 {
		t.Fatalf("got %d visitors, want 2", rl.Len())
	}

	now = now.Add(3 * time.Minute)
	rl.getLimiter("b")

	now = now.Add(4 * time.Minute)
	rl.getLimiter("c")
	// a im lặng 7 phút -> bị dọn, b mới thấy 4 phút trước -> giữ
	if rl.Len() != 2 {
		t.Fatalf("got %d visitors, want 2", rl.Len())
	}
	if _, ok := rl.visitors["a"]; ok {
		t.Fatalf("idle visitor was not evicted")
	}
}
