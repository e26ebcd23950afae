package confirm

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the state of a confirmation request.
type Outcome int32

const (
	Pending Outcome = iota
	Approved
	Denied
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Cause records what resolved a request.
type Cause string

const (
	CauseSignal    Cause = "signal"    // approve or deny event
	CauseTimeout   Cause = "timeout"   // deadline elapsed
	CauseCancelled Cause = "cancelled" // caller context done
	CauseBusy      Cause = "busy"      // rejected by admission
	CauseClosed    Cause = "closed"    // coordinator shut down
)

// BusyPolicy selects what happens to a request that arrives while another
// is pending.
type BusyPolicy string

const (
	BusyQueue  BusyPolicy = "queue"
	BusyReject BusyPolicy = "reject"
)

// ParseBusyPolicy parses a busy policy name.
func ParseBusyPolicy(s string) (BusyPolicy, error) {
	switch p := BusyPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case BusyQueue, BusyReject:
		return p, nil
	case "":
		return BusyQueue, nil
	default:
		return "", fmt.Errorf("invalid busy policy: %q", s)
	}
}

// DefaultTimeout is the confirmation deadline used when none is configured.
const DefaultTimeout = 5000 * time.Millisecond

// Info describes a confirmation request to prompts and notifiers.
type Info struct {
	ID         string
	Generation uint64
	Command    string
	Reason     string
	ArmedAt    time.Time
	Deadline   time.Time
}

// Resolution is the terminal result of a confirmation request.
type Resolution struct {
	RequestID string
	Outcome   Outcome
	Cause     Cause
	Waited    time.Duration
}

// Approved reports whether the request was approved.
func (r Resolution) Approved() bool {
	return r.Outcome == Approved
}

// Notifier is told about request lifecycle events. Implementations must
// return promptly; Resolved runs before the next request is admitted.
type Notifier interface {
	Armed(info Info)
	Resolved(info Info, res Resolution)
}
