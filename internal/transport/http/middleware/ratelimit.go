package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrdesk/internal/transport/http/api"
)

const (
	maxTrackedClients = 4096
	maxLoginBody      = 16 << 10
)

// window counts hits for one key until reset.
type window struct {
	hits  int
	reset time.Time
}

// limiter is a fixed-window counter per key.
type limiter struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	key    func(*http.Request) string
	hits   map[string]*window
	now    func() time.Time
}

func newLimiter(limit int, period time.Duration, key func(*http.Request) string) *limiter {
	return &limiter{
		limit:  limit,
		period: period,
		key:    key,
		hits:   map[string]*window{},
		now:    time.Now,
	}
}

// RateLimit caps every API request per operator, or per client address when
// no session is attached.
func RateLimit(limit int, period time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(limit, period, operatorKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// StrictRateLimit adds tighter caps for sign-in and for operations that wipe
// or replace data. Sign-in is counted both per address and per username so
// one account cannot be guessed at from many addresses.
func StrictRateLimit(base int, period time.Duration) func(http.Handler) http.Handler {
	loginByAddr := newLimiter(max(base/4, 1), period, clientAddr)
	loginByUser := newLimiter(max(base/4, 1), period, loginUserKey)
	destructive := newLimiter(max(base/2, 1), period, operatorKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classify(r) {
			case routeLogin:
				if !loginByAddr.allow(w, r) || !loginByUser.allow(w, r) {
					return
				}
			case routeDestructive:
				if !destructive.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func operatorKey(r *http.Request) string {
	if sess, ok := GetSession(r.Context()); ok && sess.Username != "" {
		return "operator:" + sess.Username
	}
	return clientAddr(r)
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

// loginUserKey reads the username from a sign-in body and puts the body back
// for the handler. Unreadable bodies fall back to the client address.
func loginUserKey(r *http.Request) string {
	if r.Body == nil {
		return clientAddr(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return clientAddr(r)
	}
	var body struct {
		Username string `json:"username"`
	}
	if json.Unmarshal(raw, &body) != nil || strings.TrimSpace(body.Username) == "" {
		return clientAddr(r)
	}
	return "login:" + strings.TrimSpace(body.Username)
}

// allow counts the request and writes the 429 itself when the key is over
// its limit. A non-positive limit disables the check.
func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.key(r)
	now := l.now()

	l.mu.Lock()
	if len(l.hits) >= maxTrackedClients {
		for k, win := range l.hits {
			if now.After(win.reset) {
				delete(l.hits, k)
			}
		}
	}
	win, ok := l.hits[key]
	if !ok || now.After(win.reset) {
		win = &window{reset: now.Add(l.period)}
		l.hits[key] = win
	}
	win.hits++
	hits, reset := win.hits, win.reset
	l.mu.Unlock()

	resetIn := int(reset.Sub(now).Round(time.Second) / time.Second)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(l.limit-hits, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(max(resetIn, 0)))
	if hits <= l.limit {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

type routeClass int

const (
	routeOpen routeClass = iota
	routeLogin
	routeDestructive
)

// destructiveRoutes replace or wipe stored data in bulk.
var destructiveRoutes = map[string]bool{
	"/system/backups": true,
	"/system/restore": true,
	"/system/reset":   true,
	"/reports/import": true,
}

func classify(r *http.Request) routeClass {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return routeOpen
	}
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	switch {
	case path == "/auth/login":
		return routeLogin
	case destructiveRoutes[path]:
		return routeDestructive
	case r.Method == http.MethodDelete && isEmployeePath(path):
		return routeDestructive
	}
	return routeOpen
}

// isEmployeePath matches /employees/{id} but not its sub-resources.
func isEmployeePath(path string) bool {
	id, ok := strings.CutPrefix(path, "/employees/")
	return ok && id != "" && !strings.Contains(id, "/")
}
