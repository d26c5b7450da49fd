package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter throttles public traffic per client IP and authenticated
// traffic per staff member.
type RateLimiter struct {
	cfg         *config.RateLimitConfig
	logger      *zap.Logger
	perIP       func(http.Handler) http.Handler
	perStaff    func(http.Handler) http.Handler
	exemptIPs   map[string]struct{}
	exemptPaths []string
	exemptExact map[string]struct{}
}

// NewRateLimiter builds the two httprate limiters from configuration.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:         cfg,
		logger:      logger,
		exemptIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		exemptExact: make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}

	for _, ip := range cfg.WhitelistIPs {
		rl.exemptIPs[ip] = struct{}{}
	}
	for _, p := range cfg.WhitelistPaths {
		// "/foo/*" entries match by prefix, everything else exactly
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			rl.exemptPaths = append(rl.exemptPaths, prefix)
		} else {
			rl.exemptExact[p] = struct{}{}
		}
	}

	rl.perIP = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rl.exceeded),
	)
	rl.perStaff = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(rl.staffKey),
		httprate.WithLimitHandler(rl.exceeded),
	)

	logger.Info("rate limiter configured",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
	)

	return rl
}

// LimitByIP throttles by client IP. Meant for routes reachable without a
// staff token, like the public booking and quote endpoints.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.wrap(next, func(w http.ResponseWriter, r *http.Request) {
		rl.perIP(next).ServeHTTP(w, r)
	})
}

// Limit throttles by staff identity when present, falling back to the
// client IP for requests without one.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return rl.wrap(next, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); ok {
			rl.perStaff(next).ServeHTTP(w, r)
		} else {
			rl.perIP(next).ServeHTTP(w, r)
		}
	})
}

// wrap applies the enabled flag and the IP/path exemptions before handing
// the request to the chosen limiter.
func (rl *RateLimiter) wrap(next http.Handler, limited http.HandlerFunc) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exemptPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := rl.exemptIPs[clientIP(r)]; ok {
			next.ServeHTTP(w, r)
			return
		}
		limited(w, r)
	})
}

func (rl *RateLimiter) staffKey(r *http.Request) (string, error) {
	if staffCtx, ok := auth.FromContext(r.Context()); ok && staffCtx != nil {
		return "staff:" + staffCtx.StaffID, nil
	}
	return "ip:" + clientIP(r), nil
}

func (rl *RateLimiter) exemptPath(path string) bool {
	if _, ok := rl.exemptExact[path]; ok {
		return true
	}
	for _, prefix := range rl.exemptPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) exceeded(w http.ResponseWriter, r *http.Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", clientIP(r)),
	}
	if staffCtx, ok := auth.FromContext(r.Context()); ok && staffCtx != nil {
		fields = append(fields, zap.String("staff_id", staffCtx.StaffID))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests. Please try again later."}`))
}

// clientIP resolves the caller's address, honoring the usual proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
