package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tripwell/trippy-server/internal/apperr"
)

// clientLimiter pairs a token bucket with its last-seen time so idle
// entries can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out one token bucket per client IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

// allow reports whether the client identified by ip may proceed. Entries
// idle for over three minutes are swept opportunistically.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for addr, client := range rl.clients {
		if now.Sub(client.lastSeen) > 3*time.Minute {
			delete(rl.clients, addr)
		}
	}

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

// withRateLimit throttles requests per client IP. A zero or negative rate
// disables the middleware entirely.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	if h.rateLimitRPS <= 0 {
		return next
	}

	rl := newRateLimiter(h.rateLimitRPS, h.rateLimitBurst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.allow(ip) {
			h.writeError(w, r, apperr.New(http.StatusTooManyRequests,
				"too many requests from this IP, please try again in an hour"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
