package actions

import (
	"sync"
)

// containerLocks serializes recreate flows per canonical container name.
//
// A second request for a name with a flow in flight is rejected rather than
// queued: the flow's precondition (the identity of the container currently
// holding the name) changes underneath a queued caller, so queueing would
// operate on stale state.
type containerLocks struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// newContainerLocks creates an empty lock table.
func newContainerLocks() *containerLocks {
	return &containerLocks{
		inFlight: make(map[string]struct{}),
	}
}

// tryAcquire attempts to claim the lock for a container name without blocking.
//
// Parameters:
//   - name: Canonical container name.
//
// Returns:
//   - bool: True if the lock was acquired, false if a flow is already in flight.
func (l *containerLocks) tryAcquire(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.inFlight[name]; held {
		return false
	}

	l.inFlight[name] = struct{}{}

	return true
}

// release frees the lock for a container name.
//
// Parameters:
//   - name: Canonical container name previously acquired.
func (l *containerLocks) release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.inFlight, name)
}
