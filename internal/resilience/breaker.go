package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrBreakerOpen is returned when a call is rejected without being attempted.
var ErrBreakerOpen = eris.New("resilience: breaker open")

// Breaker is a consecutive-failure circuit breaker for one provider. After
// Threshold consecutive failures it rejects calls for Cooldown, then lets a
// single probe through; a successful probe closes it again.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	probing  bool

	now func() time.Time // injectable for tests
}

// NewBreaker creates a breaker for the named provider. Non-positive
// threshold or cooldown fall back to 5 failures and 30s.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. A rejected call should surface
// ErrBreakerOpen to its caller.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if b.now().Sub(b.openedAt) >= b.cooldown && !b.probing {
		b.probing = true
		return true
	}
	return false
}

// Record feeds a call outcome back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.open {
			zap.L().Info("breaker closed", zap.String("provider", b.name))
		}
		b.open = false
		b.probing = false
		b.failures = 0
		return
	}

	b.failures++
	b.probing = false
	if !b.open && b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.now()
		zap.L().Warn("breaker opened",
			zap.String("provider", b.name),
			zap.Int("consecutive_failures", b.failures),
		)
	} else if b.open {
		// Failed probe; restart the cooldown.
		b.openedAt = b.now()
	}
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && b.now().Sub(b.openedAt) < b.cooldown
}
