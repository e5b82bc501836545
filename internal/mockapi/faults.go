// internal/mockapi/faults.go
package mockapi

import (
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Faults injects failures into the development server so client-side
// degradation (debounce superseding, retry, the search circuit
// breaker) can be exercised without a flaky network. Zero values
// inject nothing.
type Faults struct {
	// Latency is added to every request before it is handled.
	Latency time.Duration

	// Jitter adds up to this much extra latency, uniformly drawn.
	Jitter time.Duration

	// ErrorRate is the probability (0..1) that a request is answered
	// with a 500 before reaching its handler.
	ErrorRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFaults creates a fault injector with a fixed seed so a dev
// session's failures are reproducible.
func NewFaults(latency, jitter time.Duration, errorRate float64, seed int64) *Faults {
	return &Faults{
		Latency:   latency,
		Jitter:    jitter,
		ErrorRate: errorRate,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Middleware wraps next with the configured fault behavior.
func (f *Faults) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay := f.Latency
		f.mu.Lock()
		if f.Jitter > 0 {
			delay += time.Duration(f.rng.Int63n(int64(f.Jitter)))
		}
		fail := f.ErrorRate > 0 && f.rng.Float64() < f.ErrorRate
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeError(w, http.StatusInternalServerError, "Injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}
