package limiter

import (
	"sync"
	"time"
)

// Info describes the state of a client's rate-limit window after a call
// to Allow. The middleware turns it into the standard RateLimit-* headers.
type Info struct {
	Limit      int           // Window cap
	Remaining  int           // Requests left in the current window (never negative)
	ResetAt    time.Time     // When the current window expires
	RetryAfter time.Duration // How long to wait before retrying; set only when denied
}

// Limiter is the interface that all rate limiters must implement
// This allows us to easily swap between in-memory and Redis implementations
type Limiter interface {
	// Allow checks if a request from the given IP should be allowed and
	// reports the window state for response headers.
	Allow(ip string) (bool, Info)

	// Close cleans up any resources (Redis connections, goroutines, etc.)
	Close() error
}

// window is a single client's fixed rate-limit window.
//
// Fixed-window counting: the first request opens a window of windowSize,
// every request in that window increments the counter, and the counter
// resets when the window expires. Counts live only in memory; losing them
// on restart is acceptable.
type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter enforces a per-IP fixed window in process memory.
// Suitable for single-instance deployments; when the service runs as
// multiple replicas each replica counts independently (use the Redis
// limiter to share windows).
type MemoryLimiter struct {
	limit      int
	windowSize time.Duration

	mu      sync.Mutex
	windows map[string]*window

	done   chan struct{}
	closed bool
}

// NewMemoryLimiter creates an in-memory fixed-window limiter allowing
// `limit` requests per `windowSize` per IP. It starts a background
// goroutine that evicts expired windows so idle IPs do not accumulate.
func NewMemoryLimiter(limit int, windowSize time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		limit:      limit,
		windowSize: windowSize,
		windows:    make(map[string]*window),
		done:       make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Allow checks if a request from the given IP should be allowed.
// Increments are atomic under the limiter's mutex; there is no ordering
// guarantee across concurrent requests beyond the counter itself.
func (m *MemoryLimiter) Allow(ip string) (bool, Info) {
	now := time.Now()

	m.mu.Lock()
	w, ok := m.windows[ip]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(m.windowSize)}
		m.windows[ip] = w
	}
	w.count++
	count := w.count
	resetAt := w.resetAt
	m.mu.Unlock()

	allowed := count <= m.limit

	remaining := m.limit - count
	if remaining < 0 {
		remaining = 0
	}

	info := Info{
		Limit:     m.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		// A fixed window only admits new requests once it expires.
		info.RetryAfter = time.Until(resetAt)
	}

	return allowed, info
}

// Close stops the background eviction goroutine.
func (m *MemoryLimiter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// cleanup periodically evicts expired windows.
func (m *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(m.windowSize)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

// evictExpired removes windows that have already reset.
func (m *MemoryLimiter) evictExpired() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for ip, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, ip)
		}
	}
}
