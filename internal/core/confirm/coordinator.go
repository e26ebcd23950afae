package confirm

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Options configures a Coordinator.
type Options struct {
	// Timeout is the confirmation deadline. Zero selects DefaultTimeout.
	Timeout time.Duration
	// Busy selects how a request is handled while another is pending.
	Busy BusyPolicy
	// Notifier receives request lifecycle events. Optional.
	Notifier Notifier
	// Logger receives debug records. Optional.
	Logger *slog.Logger
}

// Coordinator is a single-flight confirmation state machine.
type Coordinator struct {
	timeout  time.Duration
	busy     BusyPolicy
	notifier Notifier
	logger   *slog.Logger

	// gate holds one token while a request is admitted
	gate      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	current    *request
	generation uint64
}

// NewCoordinator creates a coordinator in the idle state.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Busy == "" {
		opts.Busy = BusyQueue
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Coordinator{
		timeout:  opts.Timeout,
		busy:     opts.Busy,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		gate:     make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

// Timeout returns the configured confirmation deadline.
func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}

// RequestConfirmation blocks until the request is approved or denied. It
// never returns Pending. A done context or a closed coordinator resolves
// the request as Denied.
func (c *Coordinator) RequestConfirmation(ctx context.Context, command, reason string) Resolution {
	start := time.Now()

	if cause, ok := c.admit(ctx); !ok {
		c.logger.Debug("confirmation not admitted", "command", command, "cause", cause)
		return Resolution{
			Outcome: Denied,
			Cause:   cause,
			Waited:  time.Since(start),
		}
	}
	defer func() { <-c.gate }()

	req, timer := c.arm(command, reason)
	c.logger.Debug("confirmation armed",
		"id", req.info.ID,
		"generation", req.info.Generation,
		"deadline", req.info.Deadline,
	)
	c.notifier.Armed(req.info)

	select {
	case <-req.done:
	case <-ctx.Done():
		req.resolve(Denied, CauseCancelled)
	case <-c.closed:
		req.resolve(Denied, CauseClosed)
	}
	// Another path may have won the race above
	<-req.done

	timer.Stop()
	c.disarm(req)

	outcome, cause := req.result()
	res := Resolution{
		RequestID: req.info.ID,
		Outcome:   outcome,
		Cause:     cause,
		Waited:    time.Since(start),
	}

	c.logger.Debug("confirmation resolved",
		"id", res.RequestID,
		"outcome", res.Outcome.String(),
		"cause", res.Cause,
		"waited", res.Waited,
	)
	c.notifier.Resolved(req.info, res)

	return res
}

// Approve resolves the pending request as Approved. It returns false when
// no request is pending or it was already resolved.
func (c *Coordinator) Approve() bool {
	return c.signal(Approved)
}

// Deny resolves the pending request as Denied. It returns false when no
// request is pending or it was already resolved.
func (c *Coordinator) Deny() bool {
	return c.signal(Denied)
}

// Resolve resolves the request with the given ID. Unlike Approve and Deny it
// cannot land on a request armed after the caller looked at the slot.
func (c *Coordinator) Resolve(id string, outcome Outcome) bool {
	c.mu.Lock()
	req := c.current
	c.mu.Unlock()

	if req == nil || req.info.ID != id {
		return false
	}
	return req.resolve(outcome, CauseSignal)
}

// Pending returns the outstanding request, if any.
func (c *Coordinator) Pending() (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || Outcome(c.current.outcome.Load()) != Pending {
		return Info{}, false
	}
	return c.current.info, true
}

// Close denies the pending request and every later one.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *Coordinator) admit(ctx context.Context) (Cause, bool) {
	select {
	case <-c.closed:
		return CauseClosed, false
	default:
	}
	// select below picks randomly between a free gate and a done context
	if ctx.Err() != nil {
		return CauseCancelled, false
	}

	if c.busy == BusyReject {
		select {
		case c.gate <- struct{}{}:
			return "", true
		default:
			return CauseBusy, false
		}
	}

	select {
	case c.gate <- struct{}{}:
		return "", true
	case <-ctx.Done():
		return CauseCancelled, false
	case <-c.closed:
		return CauseClosed, false
	}
}

func (c *Coordinator) arm(command, reason string) (*request, *time.Timer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	generation := c.generation

	req := newRequest(generation, command, reason, time.Now(), c.timeout)
	c.current = req

	timer := time.AfterFunc(c.timeout, func() {
		c.expire(generation)
	})
	return req, timer
}

func (c *Coordinator) disarm(req *request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == req {
		c.current = nil
	}
}

func (c *Coordinator) expire(generation uint64) {
	c.mu.Lock()
	req := c.current
	c.mu.Unlock()

	if req == nil || req.info.Generation != generation {
		c.logger.Debug("stale confirmation timer ignored", "generation", generation)
		return
	}
	req.resolve(Denied, CauseTimeout)
}

func (c *Coordinator) signal(outcome Outcome) bool {
	c.mu.Lock()
	req := c.current
	c.mu.Unlock()

	if req == nil {
		return false
	}
	return req.resolve(outcome, CauseSignal)
}

type nopNotifier struct{}

func (nopNotifier) Armed(Info)                {}
func (nopNotifier) Resolved(Info, Resolution) {}
