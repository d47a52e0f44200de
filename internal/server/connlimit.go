package server

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrServerFull is returned by Acquire when the total limit is reached.
	ErrServerFull = errors.New("server connection limit reached")

	// ErrTooManyFromIP is returned by Acquire when the per-IP limit is reached.
	ErrTooManyFromIP = errors.New("per-address connection limit reached")
)

// ConnLimiter caps open preview connections per IP and in total.
type ConnLimiter struct {
	mu       sync.Mutex
	open     map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// ConnStats is a snapshot of a ConnLimiter.
type ConnStats struct {
	Open int // open connections
	IPs  int // distinct addresses with an open connection
}

// NewConnLimiter creates a limiter. A limit of 0 means unlimited.
func NewConnLimiter(maxPerIP, maxTotal int) *ConnLimiter {
	return &ConnLimiter{
		open:     make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: maxTotal,
	}
}

// Acquire takes a connection slot for ip. The returned release func gives the
// slot back; calling it more than once has no further effect.
func (c *ConnLimiter) Acquire(ip string) (release func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.maxTotal > 0 && c.total >= c.maxTotal:
		return nil, ErrServerFull
	case c.maxPerIP > 0 && c.open[ip] >= c.maxPerIP:
		return nil, ErrTooManyFromIP
	}

	c.open[ip]++
	c.total++

	var once sync.Once
	return func() { once.Do(func() { c.release(ip) }) }, nil
}

func (c *ConnLimiter) release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := c.open[ip]; n > 1 {
		c.open[ip] = n - 1
	} else {
		delete(c.open, ip)
	}
	c.total--
}

// Stats returns the current connection counts.
func (c *ConnLimiter) Stats() ConnStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnStats{Open: c.total, IPs: len(c.open)}
}

// OpenFrom returns the open connection count for ip.
func (c *ConnLimiter) OpenFrom(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[ip]
}

// hostOnly strips the port from a host:port address.
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// clientIP returns the address a request is limited by. Proxy headers are
// only honoured when trustProxy is set: the first X-Forwarded-For entry wins,
// then X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	return hostOnly(r.RemoteAddr)
}
