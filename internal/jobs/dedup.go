package jobs

import "sync"

// DedupGuard keeps at most one pipeline per lead in flight. An entry exists
// only while its holder runs; there is no expiry.
type DedupGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewDedupGuard() *DedupGuard {
	return &DedupGuard{inFlight: make(map[string]struct{})}
}

// TryAcquire claims leadID. It returns false when another pipeline holds it.
func (g *DedupGuard) TryAcquire(leadID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inFlight[leadID]; held {
		return false
	}
	g.inFlight[leadID] = struct{}{}
	return true
}

// Release drops the claim on leadID. Releasing an unheld id is a no-op.
func (g *DedupGuard) Release(leadID string) {
	g.mu.Lock()
	delete(g.inFlight, leadID)
	g.mu.Unlock()
}

func (g *DedupGuard) Held(leadID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.inFlight[leadID]
	return held
}

// Len is the number of pipelines currently in flight.
func (g *DedupGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight)
}
