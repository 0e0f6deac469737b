package minipress

import (
	"sync"
	"time"
)

// LoginLimiter bounds failed login attempts per client IP inside a sliding
// window. Successful logins never consume budget: the login handler calls
// Check before verifying credentials and Record only on failure.
type LoginLimiter struct {
	mu     sync.Mutex
	ips    map[string]*ipWindow
	max    int
	window time.Duration
	now    func() time.Time
	lastGC time.Time
}

type ipWindow struct {
	start    time.Time
	failures int
}

// NewLoginLimiter allows max failed attempts per window for each IP.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ips:    make(map[string]*ipWindow),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Check reports whether the IP still has attempt budget. It never records
// an attempt.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeGC()

	w, ok := l.ips[ip]
	if !ok || l.expired(w) {
		return true
	}
	return w.failures < l.max
}

// Record registers one failed login attempt for the IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.ips[ip]
	if !ok || l.expired(w) {
		l.ips[ip] = &ipWindow{start: l.now(), failures: 1}
		return
	}
	w.failures++
}

func (l *LoginLimiter) expired(w *ipWindow) bool {
	return l.now().Sub(w.start) >= l.window
}

// maybeGC drops expired windows so the map does not grow with every
// scanner that probes the login form once. Runs at most once per window.
// Caller holds the lock.
func (l *LoginLimiter) maybeGC() {
	now := l.now()
	if now.Sub(l.lastGC) < l.window {
		return
	}
	l.lastGC = now
	for ip, w := range l.ips {
		if l.expired(w) {
			delete(l.ips, ip)
		}
	}
}
