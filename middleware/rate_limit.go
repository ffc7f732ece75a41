package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Mỗi IP có một limiter riêng + lastSeen để dọn dẹp
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter quản lý map<ip, limiter>. Không chạy goroutine nền:
// IP quá ttl được dọn ngay trong lúc tra cứu.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	// cấu hình chung cho tất cả IP
	reqPerMin int // số request/phút
	burst     int // số burst cho phép
	ttl       time.Duration

	lastSweep time.Time
	now       func() time.Time
}

// reqPerMin: ví dụ 10, burst: 5, ttl: 5 phút (IP không hoạt động sẽ bị dọn)
func NewIPRateLimiter(reqPerMin, burst int, ttl time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		reqPerMin: reqPerMin,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	if v, ok := rl.visitors[ip]; ok {
		v.lastSeen = now
		return v.limiter
	}

	// chuyển req/phút -> rate.Limit (req/giây)
	rps := float64(rl.reqPerMin) / 60.0
	limiter := rate.NewLimiter(rate.Limit(rps), rl.burst)
	rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: now}
	return limiter
}

// sweep chạy tối đa mỗi phút một lần, gọi khi đang giữ mu.
func (rl *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// Len: số IP đang được theo dõi.
func (rl *IPRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// ====== Middleware dùng cho 1 endpoint cụ thể ======

func RateLimitByIP(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP() // Gin sẽ xét X-Forwarded-For nếu đã cấu hình TrustedProxies
		limiter := rl.getLimiter(ip)
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too Many Requests",
				"hint":    "Vui lòng thử lại sau ít phút.",
			})
			return
		}
		c.Next()
	}
}
