package confirm

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// request is one confirmation episode. The outcome moves from Pending to a
// terminal state exactly once; done is closed by the winner.
type request struct {
	info    Info
	outcome atomic.Int32
	cause   Cause
	done    chan struct{}
}

func newRequest(generation uint64, command, reason string, now time.Time, timeout time.Duration) *request {
	return &request{
		info: Info{
			ID:         uuid.New().String(),
			Generation: generation,
			Command:    command,
			Reason:     reason,
			ArmedAt:    now,
			Deadline:   now.Add(timeout),
		},
		done: make(chan struct{}),
	}
}

// resolve moves the request to a terminal outcome. It returns false if the
// request was already resolved or outcome is not Approved or Denied.
func (r *request) resolve(outcome Outcome, cause Cause) bool {
	if outcome != Approved && outcome != Denied {
		return false
	}
	if !r.outcome.CompareAndSwap(int32(Pending), int32(outcome)) {
		return false
	}
	r.cause = cause
	close(r.done)
	return true
}

// result must only be called after done is closed.
func (r *request) result() (Outcome, Cause) {
	return Outcome(r.outcome.Load()), r.cause
}
