package restapi

import (
	"log/slog"
	"maps"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripranker.dev/internal/clock"
	"tripranker.dev/internal/metrics"
	"tripranker.dev/internal/models"
)

// RateLimitConfig configures the per-address request counter.
type RateLimitConfig struct {
	// Limit is the number of requests an address may make per window.
	Limit  int
	Window time.Duration
	// ResetAll clears every counter when a window ends. When false only
	// addresses that reached the limit are reset; the others keep counting.
	ResetAll          bool
	ExemptAddresses   []string
	TrustProxyHeaders bool
}

// RateLimitMiddleware counts requests per client address and rejects an
// address once it has made Limit requests in the current window.
type RateLimitMiddleware struct {
	counts      map[string]int
	mu          sync.Mutex
	windowStart time.Time

	limit      int
	window     time.Duration
	resetAll   bool
	trustProxy bool
	exempt     map[string]bool

	ticker   clock.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewRateLimitMiddleware creates the counter and starts its window reset goroutine.
func NewRateLimitMiddleware(cfg RateLimitConfig, c clock.Clock, m *metrics.Metrics, logger *slog.Logger) *RateLimitMiddleware {
	if c == nil {
		c = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	exemptMap := make(map[string]bool)
	for _, addr := range cfg.ExemptAddresses {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			exemptMap[trimmed] = true
		}
	}

	rl := &RateLimitMiddleware{
		counts:      make(map[string]int),
		windowStart: c.Now(),
		limit:       cfg.Limit,
		window:      cfg.Window,
		resetAll:    cfg.ResetAll,
		trustProxy:  cfg.TrustProxyHeaders,
		exempt:      exemptMap,
		ticker:      c.NewTicker(cfg.Window),
		stopChan:    make(chan struct{}),
		clock:       c,
		metrics:     m,
		logger:      logger.With(slog.String("component", "rate_limiter")),
	}

	go rl.resetLoop()

	return rl
}

// Handler returns the HTTP middleware handler function
func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return rl.rateLimitHandler
}

func (rl *RateLimitMiddleware) rateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddress(r, rl.trustProxy)
		if addr == "" {
			rl.logger.Warn("request without client address rejected", slog.String("remote_addr", r.RemoteAddr))
			writeErrorResponse(w, rl.logger, models.NewErrorResponse(http.StatusBadRequest,
				"Unable to determine client address", r.URL.Path, rl.clock))
			return
		}

		if rl.exempt[addr] {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.take(addr) {
			rl.metrics.IncRateLimitRejections()
			rl.sendRateLimitExceeded(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take reports whether addr is under the limit and counts the request either way.
func (rl *RateLimitMiddleware) take(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	count := rl.counts[addr]
	rl.counts[addr] = count + 1
	return count < rl.limit
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	rl.mu.Lock()
	remaining := rl.window - rl.clock.Now().Sub(rl.windowStart)
	rl.mu.Unlock()

	retryAfter := int(math.Ceil(remaining.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", "0")

	writeErrorResponse(w, rl.logger, models.NewErrorResponse(http.StatusTooManyRequests,
		"Rate limit exceeded. Please try again later.", r.URL.Path, rl.clock))
}

// resetOnce ends the current window. It is separated from the background
// loop so tests can trigger it synchronously.
func (rl *RateLimitMiddleware) resetOnce() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.windowStart = rl.clock.Now()

	if rl.resetAll {
		clear(rl.counts)
		return
	}

	// Only saturated addresses start over; addresses below the limit carry
	// their count into the next window.
	for addr, count := range rl.counts {
		if count >= rl.limit {
			rl.counts[addr] = 0
		}
	}
}

func (rl *RateLimitMiddleware) resetLoop() {
	for {
		select {
		case <-rl.ticker.C():
			rl.resetOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Counts returns a snapshot of the current counters.
func (rl *RateLimitMiddleware) Counts() map[string]int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return maps.Clone(rl.counts)
}

// Stop stops the reset goroutine. It is safe to call multiple times.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.ticker.Stop()
	})
}

// clientAddress resolves the address a request is counted against. With
// trustProxy the first X-Forwarded-For entry wins over the socket peer.
func clientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}
