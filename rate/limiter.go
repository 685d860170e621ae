// Package rate throttles repeated attempts keyed by client identity.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	Expiry   time.Duration
	Burst    int
	LimitRPS float64
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	done     chan struct{}
	stop     sync.Once
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLimiter allows burst attempts per client, refilled at limitRPS. Clients
// idle for longer than expiry are forgotten.
func NewLimiter(burst int, expiry time.Duration, limitRPS float64) *Limiter {
	lm := &Limiter{
		Expiry:   expiry,
		LimitRPS: limitRPS,
		Burst:    burst,
		clients:  make(map[string]*clientLimiter),
		done:     make(chan struct{}),
	}
	go lm.refresh()
	return lm
}

// Check reports whether the client identified by id may attempt again.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.LimitRPS), l.Burst)}
		l.clients[id] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

// Stop ends the idle client sweep.
func (l *Limiter) Stop() {
	l.stop.Do(func() { close(l.done) })
}

func (l *Limiter) refresh() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
		}

		l.mu.Lock()
		for id, v := range l.clients {
			if time.Since(v.lastAccess) > l.Expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
