package http

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter table. Clients beyond it share one
// overflow bucket.
const maxTrackedClients = 10000

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu         sync.Mutex
	clients    map[string]*client
	overflow   *rate.Limiter
	rate       rate.Limit
	burst      int
	idleTTL    time.Duration
	maxClients int
	lastSweep  time.Time
	clock      clockwork.Clock
}

func newIPLimiter(requestsPerWindow int, window time.Duration, clock clockwork.Clock) *ipLimiter {
	burst := requestsPerWindow / 2
	if burst < 1 {
		burst = 1
	}
	r := rate.Limit(float64(requestsPerWindow) / window.Seconds())
	return &ipLimiter{
		clients:  make(map[string]*client),
		overflow: rate.NewLimiter(r, burst),
		rate:     r,
		burst:    burst,
		// A bucket idle for a whole window has refilled, so dropping it
		// changes nothing for that client.
		idleTTL:    window,
		maxClients: maxTrackedClients,
		lastSweep:  clock.Now(),
		clock:      clock,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	if c, ok := l.clients[ip]; ok {
		c.lastSeen = now
		return c.limiter
	}
	if len(l.clients) >= l.maxClients {
		return l.overflow
	}
	c := &client{limiter: rate.NewLimiter(l.rate, l.burst), lastSeen: now}
	l.clients[ip] = c
	return c.limiter
}

func (l *ipLimiter) sweep(now time.Time) {
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimitMiddleware rate-limits by client IP with a token bucket per IP.
func RateLimitMiddleware(requestsPerWindow int, window time.Duration) func(http.Handler) http.Handler {
	return rateLimit(newIPLimiter(requestsPerWindow, window, clockwork.NewRealClock()), window)
}

func rateLimit(limiter *ipLimiter, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			if ip == "" {
				ip = r.RemoteAddr
			}
			if !limiter.get(ip).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
