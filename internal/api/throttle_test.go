package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestThrottleWindow(t *testing.T) {
	th := newThrottle(3, time.Hour)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if !th.allow("10.0.0.1", base.Add(time.Duration(i)*time.Minute)) {
			t.Fatalf("command %d refused inside the window", i+1)
		}
	}
	if th.allow("10.0.0.1", base.Add(4*time.Minute)) {
		t.Error("fourth command allowed inside the window")
	}
	if !th.allow("10.0.0.2", base.Add(4*time.Minute)) {
		t.Error("second caller blocked by first caller's window")
	}
	if !th.allow("10.0.0.1", base.Add(61*time.Minute)) {
		t.Error("command refused after the window reset")
	}
}

func TestThrottleRetryAfter(t *testing.T) {
	th := newThrottle(1, time.Hour)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	th.allow("10.0.0.1", base)
	if got := th.retryAfter("10.0.0.1", base.Add(30*time.Minute)); got != 1801 {
		t.Errorf("retry after %d seconds, want 1801", got)
	}
	if got := th.retryAfter("10.0.0.9", base); got != 0 {
		t.Errorf("unknown caller retry after %d, want 0", got)
	}
}

func TestThrottlePrunesStaleCallers(t *testing.T) {
	th := newThrottle(1, time.Hour)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	th.allow("10.0.0.1", base)
	th.allow("10.0.0.2", base.Add(3*time.Hour))
	if _, ok := th.callers["10.0.0.1"]; ok {
		t.Error("stale caller window not pruned")
	}
}

func TestCallerID(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/advance", nil)
	r.RemoteAddr = "192.0.2.10:5912"
	if got := callerID(r); got != "192.0.2.10" {
		t.Errorf("caller %q, want remote host", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := callerID(r); got != "203.0.113.7" {
		t.Errorf("caller %q, want first forwarded address", got)
	}
}
