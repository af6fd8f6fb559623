package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"skillsync/internal/config"
	"skillsync/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// LimiterManager keeps one token bucket per client key (IP or API key).
// Buckets unused for idleTTL are evicted.
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	done     chan struct{}
	once     sync.Once
	logger   *errors.Logger
}

// NewRateLimiter starts a manager allowing cfg.RequestsPerMin per key with
// cfg.BurstCapacity burst. Close stops its eviction goroutine.
func NewRateLimiter(cfg config.RateLimitConfig, logger *errors.Logger) *LimiterManager {
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}

	m := &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:    cfg.BurstCapacity,
		idleTTL:  idleTTL,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go m.cleanupRoutine()
	return m
}

// Allow consumes a token for key if one is available
func (m *LimiterManager) Allow(key string) bool {
	return m.limiter(key, time.Now()).Allow()
}

func (m *LimiterManager) limiter(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.limiters[key]
	if !ok {
		l = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = l
	}
	m.lastSeen[key] = now
	return l
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"enabled":         true,
		"active_limiters": len(m.limiters),
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
		"idle_ttl":        m.idleTTL.String(),
	}
}

func (m *LimiterManager) cleanupRoutine() {
	ticker := time.NewTicker(m.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.evictIdle(now)
		case <-m.done:
			return
		}
	}
}

// evictIdle drops limiters last used more than idleTTL before now
func (m *LimiterManager) evictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, seen := range m.lastSeen {
		if now.Sub(seen) > m.idleTTL {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Debug("Rate limiter eviction completed",
			"evicted", evicted,
			"remaining_limiters", len(m.limiters))
	}
	return evicted
}

// Close stops the eviction goroutine. It is safe to call more than once.
func (m *LimiterManager) Close() {
	m.once.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the per-key budget with 429
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil || s.RateLimit == nil || !s.RateLimit.Enabled {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" || s.RateLimiter.Allow(key) {
			next(w, r)
			return
		}

		keyType, _, _ := strings.Cut(key, ":")
		s.om.GetMetrics().RecordRateLimitHit(r.Context(),
			attribute.String("endpoint", r.URL.Path),
			attribute.String("key_type", keyType))
		s.Logger.Info("Rate limit exceeded",
			"key_type", keyType,
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r),
			"request_id", requestID(r.Context()))
		w.Header().Set("Retry-After", "60")
		writeErrorResponse(w, r, "Rate limit exceeded", "Too many requests", "", http.StatusTooManyRequests)
	}
}

// getRateLimitKey prefers the API key when byAPIKey is set and one was sent
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := extractAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
