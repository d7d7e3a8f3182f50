package services

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/models"
)

// StatusTracker holds the session-scoped status of every operation kind and
// the set currently in flight. Transitions are validated; nothing here ever
// changes status on its own, only the execution engine, an explicit reset,
// or the sweeper drive it.
type StatusTracker struct {
	mu          sync.Mutex
	statuses    map[models.OperationKind]models.OperationStatus
	completed   map[models.OperationKind]time.Time
	inflight    map[models.OperationKind]bool
	chainActive bool
}

func NewStatusTracker() *StatusTracker {
	t := &StatusTracker{}
	t.resetLocked()
	return t
}

func (t *StatusTracker) resetLocked() {
	t.statuses = make(map[models.OperationKind]models.OperationStatus, len(models.OperationKinds))
	t.completed = make(map[models.OperationKind]time.Time)
	t.inflight = make(map[models.OperationKind]bool)
	for _, kind := range models.OperationKinds {
		t.statuses[kind] = models.StatusIdle
	}
}

func (t *StatusTracker) StatusOf(kind models.OperationKind) models.OperationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statuses[kind]
}

// Snapshot returns a copy of every status for chain computation.
func (t *StatusTracker) Snapshot() map[models.OperationKind]models.OperationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[models.OperationKind]models.OperationStatus, len(t.statuses))
	for kind, status := range t.statuses {
		out[kind] = status
	}
	return out
}

// BeginChain reserves the tracker for one chain. The in-flight check and
// the reservation happen under a single lock acquisition, so two chains can
// never both be admitted no matter how their requests interleave.
func (t *StatusTracker) BeginChain() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.chainActive || len(t.inflight) > 0 {
		return ErrChainInFlight
	}
	t.chainActive = true
	return nil
}

// EndChain releases the reservation once the chain settles.
func (t *StatusTracker) EndChain() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chainActive = false
}

// SetRunning marks a kind in flight. Marking a kind that is already running
// is a caller bug and is rejected.
func (t *StatusTracker) SetRunning(kind models.OperationKind) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.statuses[kind]
	if !models.ValidStatusTransition(current, models.StatusRunning) {
		return fmt.Errorf("cannot start %s while it is %s", kind, current)
	}

	t.statuses[kind] = models.StatusRunning
	t.inflight[kind] = true
	return nil
}

// SetResult settles a running kind and removes it from the in-flight set.
func (t *StatusTracker) SetResult(kind models.OperationKind, succeeded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := models.StatusFailed
	if succeeded {
		status = models.StatusSucceeded
	}

	t.statuses[kind] = status
	t.completed[kind] = time.Now()
	delete(t.inflight, kind)
}

// AnyRunning covers both an in-flight kind and a chain that is admitted but
// has not started its first step yet.
func (t *StatusTracker) AnyRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chainActive || len(t.inflight) > 0
}

// Running lists the in-flight kinds in display order.
func (t *StatusTracker) Running() []models.OperationKind {
	t.mu.Lock()
	defer t.mu.Unlock()
	running := []models.OperationKind{}
	for _, kind := range models.OperationKinds {
		if t.inflight[kind] {
			running = append(running, kind)
		}
	}
	return running
}

// Reset returns every kind to idle and clears the in-flight set. Driven by
// the explicit reset-all action only.
func (t *StatusTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()

	log.WithFields(log.Fields{
		"topic":   "igfe",
		"package": "services",
		"event":   "status_reset",
	}).Debug("operation statuses reset")
}

// SweepSucceeded idles every succeeded kind whose completion is older than
// the cooldown. Failed kinds are left for the user to see. Returns how many
// kinds were idled.
func (t *StatusTracker) SweepSucceeded(cooldown time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	swept := 0
	cutoff := time.Now().Add(-cooldown)
	for kind, status := range t.statuses {
		if status != models.StatusSucceeded {
			continue
		}
		if done, ok := t.completed[kind]; ok && done.Before(cutoff) {
			t.statuses[kind] = models.StatusIdle
			delete(t.completed, kind)
			swept++
		}
	}
	return swept
}
