package milestone

import "sync"

// Guard coalesces overlapping mutating operations on the one
// repository: a save or restore triggered while another is in flight is
// rejected instead of queued. Listing is read-only and never guarded.
type Guard struct {
	mu sync.Mutex
}

// TryAcquire attempts to take the guard without blocking. Returns true
// when the caller may proceed; it must call Release afterwards,
// typically with defer.
func (g *Guard) TryAcquire() bool {
	return g.mu.TryLock()
}

// Release frees the guard taken by TryAcquire.
func (g *Guard) Release() {
	g.mu.Unlock()
}
