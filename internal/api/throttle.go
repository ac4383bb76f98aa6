// Throttle for the admin command endpoints. The engine serializes every
// handler behind one mutex, so a runaway client advancing the clock in a
// loop would starve all readers; a fixed window per caller keeps the
// control plane responsive.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// throttle counts commands per caller over a fixed window.
type throttle struct {
	mu      sync.Mutex
	callers map[string]*commandWindow
	limit   int
	span    time.Duration
}

type commandWindow struct {
	used    int
	started time.Time
}

func newThrottle(limit int, span time.Duration) *throttle {
	return &throttle{
		callers: make(map[string]*commandWindow),
		limit:   limit,
		span:    span,
	}
}

// allow records one command for the caller, reporting whether it fits in
// the current window. Stale windows are pruned as a side effect.
func (t *throttle) allow(caller string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, w := range t.callers {
		if now.Sub(w.started) > 2*t.span {
			delete(t.callers, id)
		}
	}

	w := t.callers[caller]
	if w == nil || now.Sub(w.started) >= t.span {
		t.callers[caller] = &commandWindow{used: 1, started: now}
		return true
	}
	if w.used < t.limit {
		w.used++
		return true
	}
	return false
}

// retryAfter returns the seconds until the caller's window resets.
func (t *throttle) retryAfter(caller string, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.callers[caller]
	if w == nil {
		return 0
	}
	remaining := t.span - now.Sub(w.started)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// wrap throttles a command handler's POSTs; reads pass freely.
func (t *throttle) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			caller := callerID(r)
			now := time.Now()
			if !t.allow(caller, now) {
				w.Header().Set("Retry-After", strconv.Itoa(t.retryAfter(caller, now)))
				http.Error(w, "command rate exceeded", http.StatusTooManyRequests)
				return
			}
		}
		next(w, r)
	}
}

// callerID identifies the client: the first forwarded address when the
// API sits behind a proxy, the remote host otherwise.
func callerID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
