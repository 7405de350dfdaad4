package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"correctnow/internal/cache"
)

// ExtensionKeyHeader carries the shared browser-extension secret. Requests
// presenting the right secret skip the anonymous limiter entirely.
const ExtensionKeyHeader = "X-Extension-Key"

// AnonRemainingHeader reports how many anonymous checks remain in the
// current window.
const AnonRemainingHeader = "X-Anon-Remaining"

type anonBucket struct {
	count   int
	resetAt time.Time
}

// AnonLimiter bounds unauthenticated request volume per client IP: a fixed
// ceiling per rolling window, reset lazily once the window lapses. This is a
// soft limit: concurrent requests from one IP may slightly overshoot, which
// the design accepts.
type AnonLimiter struct {
	limit     int
	window    time.Duration
	bypassKey string
	clock     func() time.Time
	buckets   *cache.Store[anonBucket]
}

// NewAnonLimiter builds a limiter allowing limit requests per window per IP,
// holding at most maxEntries tracked IPs. A nil clock defaults to time.Now.
func NewAnonLimiter(limit int, window time.Duration, bypassKey string, maxEntries int, clock func() time.Time) *AnonLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &AnonLimiter{
		limit:     limit,
		window:    window,
		bypassKey: bypassKey,
		clock:     clock,
		buckets:   cache.New[anonBucket](maxEntries),
	}
}

// Check consumes one slot for ip and reports how many remain. ok is false
// when the ceiling was already reached; the counter is not advanced past the
// limit so a denied request does not extend the exhaustion.
func (l *AnonLimiter) Check(ip string) (remaining int, ok bool) {
	now := l.clock()
	denied := false
	b := l.buckets.Update(ip, now, func(prev anonBucket, found bool) (anonBucket, time.Time) {
		if !found {
			prev = anonBucket{resetAt: now.Add(l.window)}
		}
		if prev.count >= l.limit {
			denied = true
			return prev, prev.resetAt
		}
		prev.count++
		return prev, prev.resetAt
	})
	return max(0, l.limit-b.count), !denied
}

// Remaining reports the current allowance without consuming a slot.
func (l *AnonLimiter) Remaining(ip string) int {
	b, ok := l.buckets.Get(ip, l.clock())
	if !ok {
		return l.limit
	}
	return max(0, l.limit-b.count)
}

// Middleware gates unauthenticated traffic. A verified user identity on the
// request context (set by the auth middleware upstream) is admitted here and
// accounted by the ledger instead; a valid extension secret bypasses the
// gate entirely. A malformed or forged bearer token yields no identity and
// stays subject to the limit.
func (l *AnonLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.bypassKey != "" && r.Header.Get(ExtensionKeyHeader) == l.bypassKey {
			next.ServeHTTP(w, r)
			return
		}
		if UserIDFromContext(r.Context()) != "" {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientIPForRateLimit(r)
		remaining, ok := l.Check(ip)
		w.Header().Set(AnonRemainingHeader, itoa(remaining))
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message":      "Anonymous check limit reached. Sign in to continue.",
				"requiresAuth": true,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func itoa(n int) string {
	if n < 0 {
		n = 0
	}
	return strconv.Itoa(n)
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}

// ClientIP exposes the limiter's IP resolution for handlers that key quota
// state by client address.
func ClientIP(r *http.Request) string {
	return clientIPForRateLimit(r)
}
