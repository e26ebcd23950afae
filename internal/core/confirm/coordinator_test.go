package confirm

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	armed    chan Info
	resolved chan Resolution
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		armed:    make(chan Info, 64),
		resolved: make(chan Resolution, 64),
	}
}

func (n *recordingNotifier) Armed(info Info)                 { n.armed <- info }
func (n *recordingNotifier) Resolved(_ Info, res Resolution) { n.resolved <- res }

func waitArmed(t *testing.T, n *recordingNotifier) Info {
	t.Helper()
	select {
	case info := <-n.armed:
		return info
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for request to be armed")
		return Info{}
	}
}

func requestAsync(c *Coordinator, ctx context.Context, command string) <-chan Resolution {
	ch := make(chan Resolution, 1)
	go func() {
		ch <- c.RequestConfirmation(ctx, command, "test")
	}()
	return ch
}

func waitResolution(t *testing.T, ch <-chan Resolution) Resolution {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for resolution")
		return Resolution{}
	}
}

func TestCoordinator_SignalResolves(t *testing.T) {
	tests := []struct {
		name    string
		signal  func(c *Coordinator) bool
		outcome Outcome
	}{
		{"approve", (*Coordinator).Approve, Approved},
		{"deny", (*Coordinator).Deny, Denied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newRecordingNotifier()
			c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

			ch := requestAsync(c, context.Background(), "rm -rf /data")
			waitArmed(t, n)

			if !tt.signal(c) {
				t.Fatal("Expected signal to resolve the pending request")
			}

			res := waitResolution(t, ch)
			if res.Outcome != tt.outcome {
				t.Errorf("Expected %v, got %v", tt.outcome, res.Outcome)
			}
			if res.Cause != CauseSignal {
				t.Errorf("Expected cause signal, got %s", res.Cause)
			}
			if res.RequestID == "" {
				t.Error("Expected request ID to be set")
			}
		})
	}
}

func TestCoordinator_TimeoutDenies(t *testing.T) {
	timeout := 80 * time.Millisecond
	c := NewCoordinator(Options{Timeout: timeout})

	start := time.Now()
	res := c.RequestConfirmation(context.Background(), "rm -rf /data", "test")
	elapsed := time.Since(start)

	if res.Outcome != Denied {
		t.Errorf("Expected Denied, got %v", res.Outcome)
	}
	if res.Cause != CauseTimeout {
		t.Errorf("Expected cause timeout, got %s", res.Cause)
	}
	if elapsed < timeout {
		t.Errorf("Resolved after %v, before the %v deadline", elapsed, timeout)
	}
	if elapsed > timeout+2*time.Second {
		t.Errorf("Resolved after %v, far past the %v deadline", elapsed, timeout)
	}
}

func TestCoordinator_ResolveIsIdempotent(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	ch := requestAsync(c, context.Background(), "dd if=/dev/zero of=/tmp/x")
	info := waitArmed(t, n)

	if !c.Approve() {
		t.Fatal("Expected first approve to win")
	}
	// Late signals and timer fires lose
	c.Deny()
	c.Resolve(info.ID, Denied)
	c.expire(info.Generation)

	res := waitResolution(t, ch)
	if res.Outcome != Approved {
		t.Errorf("Expected outcome to stay Approved, got %v", res.Outcome)
	}

	select {
	case extra := <-n.resolved:
		if extra.Outcome != Approved {
			t.Errorf("Unexpected resolution %v", extra.Outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected one resolved notification")
	}
	select {
	case extra := <-n.resolved:
		t.Errorf("Expected a single resolved notification, got another: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCoordinator_SignalWithoutPendingIsNoop(t *testing.T) {
	c := NewCoordinator(Options{})

	if c.Approve() {
		t.Error("Expected approve with nothing pending to be a no-op")
	}
	if c.Deny() {
		t.Error("Expected deny with nothing pending to be a no-op")
	}
	if _, ok := c.Pending(); ok {
		t.Error("Expected no pending request")
	}
}

func TestCoordinator_StaleTimerIgnored(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	first := requestAsync(c, context.Background(), "first")
	firstInfo := waitArmed(t, n)
	c.Deny()
	waitResolution(t, first)

	second := requestAsync(c, context.Background(), "second")
	secondInfo := waitArmed(t, n)
	if secondInfo.Generation <= firstInfo.Generation {
		t.Fatalf("Expected generation to increase, got %d after %d",
			secondInfo.Generation, firstInfo.Generation)
	}

	// Timer armed for the first request fires late
	c.expire(firstInfo.Generation)

	if info, ok := c.Pending(); !ok || info.ID != secondInfo.ID {
		t.Fatal("Expected second request to remain pending after stale timer")
	}

	c.Approve()
	if res := waitResolution(t, second); res.Outcome != Approved {
		t.Errorf("Expected Approved, got %v", res.Outcome)
	}
}

func TestCoordinator_ResolveByID(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	ch := requestAsync(c, context.Background(), "umount /system")
	info := waitArmed(t, n)

	if c.Resolve("not-the-id", Approved) {
		t.Error("Expected resolve with unknown ID to fail")
	}
	if c.Resolve(info.ID, Pending) {
		t.Error("Expected resolve to Pending to fail")
	}
	if c.Resolve(info.ID, Outcome(7)) {
		t.Error("Expected resolve to an unknown outcome to fail")
	}
	if _, ok := c.Pending(); !ok {
		t.Fatal("Expected request to stay pending after rejected resolutions")
	}
	if !c.Resolve(info.ID, Approved) {
		t.Fatal("Expected resolve by ID to succeed")
	}
	if res := waitResolution(t, ch); res.Outcome != Approved {
		t.Errorf("Expected Approved, got %v", res.Outcome)
	}
}

func TestCoordinator_ContextCancelDenies(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	ctx, cancel := context.WithCancel(context.Background())
	ch := requestAsync(c, ctx, "rm -rf /")
	waitArmed(t, n)
	cancel()

	res := waitResolution(t, ch)
	if res.Outcome != Denied || res.Cause != CauseCancelled {
		t.Errorf("Expected Denied/cancelled, got %v/%s", res.Outcome, res.Cause)
	}
	if _, ok := c.Pending(); ok {
		t.Error("Expected slot to be idle after cancellation")
	}
}

func TestCoordinator_CancelledContextNeverArms(t *testing.T) {
	for _, busy := range []BusyPolicy{BusyQueue, BusyReject} {
		t.Run(string(busy), func(t *testing.T) {
			n := newRecordingNotifier()
			c := NewCoordinator(Options{Timeout: 5 * time.Second, Busy: busy, Notifier: n})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			for i := 0; i < 50; i++ {
				res := c.RequestConfirmation(ctx, "rm -rf /", "test")
				if res.Outcome != Denied || res.Cause != CauseCancelled {
					t.Fatalf("run %d: expected Denied/cancelled, got %v/%s", i, res.Outcome, res.Cause)
				}
			}

			select {
			case info := <-n.armed:
				t.Errorf("Expected no request to be armed, got %s", info.ID)
			default:
			}
		})
	}
}

func TestCoordinator_BusyReject(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Busy: BusyReject, Notifier: n})

	first := requestAsync(c, context.Background(), "first")
	waitArmed(t, n)

	res := c.RequestConfirmation(context.Background(), "second", "test")
	if res.Outcome != Denied || res.Cause != CauseBusy {
		t.Errorf("Expected Denied/busy, got %v/%s", res.Outcome, res.Cause)
	}

	c.Approve()
	if res := waitResolution(t, first); res.Outcome != Approved {
		t.Errorf("Expected first request to be unaffected, got %v", res.Outcome)
	}
}

func TestCoordinator_BusyQueueSerializes(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Busy: BusyQueue, Notifier: n})

	first := requestAsync(c, context.Background(), "first")
	waitArmed(t, n)
	second := requestAsync(c, context.Background(), "second")

	select {
	case info := <-n.armed:
		t.Fatalf("Second request armed while first pending: %+v", info)
	case <-time.After(50 * time.Millisecond):
	}

	c.Deny()
	if res := waitResolution(t, first); res.Outcome != Denied {
		t.Errorf("Expected first Denied, got %v", res.Outcome)
	}

	info := waitArmed(t, n)
	if info.Command != "second" {
		t.Errorf("Expected second request to be armed, got %q", info.Command)
	}
	c.Approve()
	if res := waitResolution(t, second); res.Outcome != Approved {
		t.Errorf("Expected second Approved, got %v", res.Outcome)
	}
}

func TestCoordinator_QueuedRequestCancelled(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	first := requestAsync(c, context.Background(), "first")
	waitArmed(t, n)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	res := c.RequestConfirmation(ctx, "queued", "test")
	if res.Outcome != Denied || res.Cause != CauseCancelled {
		t.Errorf("Expected queued request Denied/cancelled, got %v/%s", res.Outcome, res.Cause)
	}

	c.Approve()
	waitResolution(t, first)
}

func TestCoordinator_ConcurrentRequestsGetOwnResolution(t *testing.T) {
	const workers = 8

	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	results := make([]Resolution, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.RequestConfirmation(context.Background(), fmt.Sprintf("cmd-%d", i), "test")
		}(i)
	}

	// Approve even commands, deny odd ones
	go func() {
		for k := 0; k < workers; k++ {
			info := <-n.armed
			var i int
			fmt.Sscanf(info.Command, "cmd-%d", &i)
			if i%2 == 0 {
				c.Resolve(info.ID, Approved)
			} else {
				c.Resolve(info.ID, Denied)
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Concurrent requests did not all resolve")
	}

	seen := make(map[string]bool)
	for i, res := range results {
		want := Denied
		if i%2 == 0 {
			want = Approved
		}
		if res.Outcome != want {
			t.Errorf("cmd-%d: expected %v, got %v", i, want, res.Outcome)
		}
		if seen[res.RequestID] {
			t.Errorf("cmd-%d: request ID %s reused", i, res.RequestID)
		}
		seen[res.RequestID] = true
	}
}

func TestCoordinator_Close(t *testing.T) {
	n := newRecordingNotifier()
	c := NewCoordinator(Options{Timeout: 5 * time.Second, Notifier: n})

	ch := requestAsync(c, context.Background(), "rm x")
	waitArmed(t, n)
	c.Close()
	c.Close()

	if res := waitResolution(t, ch); res.Outcome != Denied || res.Cause != CauseClosed {
		t.Errorf("Expected Denied/closed, got %v/%s", res.Outcome, res.Cause)
	}

	res := c.RequestConfirmation(context.Background(), "rm y", "test")
	if res.Outcome != Denied || res.Cause != CauseClosed {
		t.Errorf("Expected later request Denied/closed, got %v/%s", res.Outcome, res.Cause)
	}
}

func TestCoordinator_PendingInfo(t *testing.T) {
	n := newRecordingNotifier()
	timeout := 5 * time.Second
	c := NewCoordinator(Options{Timeout: timeout, Notifier: n})

	ch := requestAsync(c, context.Background(), "mknod /dev/x")
	armed := waitArmed(t, n)

	info, ok := c.Pending()
	if !ok {
		t.Fatal("Expected a pending request")
	}
	if info.ID != armed.ID || info.Command != "mknod /dev/x" {
		t.Errorf("Unexpected pending info %+v", info)
	}
	if got := info.Deadline.Sub(info.ArmedAt); got != timeout {
		t.Errorf("Expected deadline %v after arming, got %v", timeout, got)
	}

	c.Deny()
	waitResolution(t, ch)
}

func TestNewCoordinator_Defaults(t *testing.T) {
	c := NewCoordinator(Options{})
	if c.Timeout() != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, c.Timeout())
	}
	if c.busy != BusyQueue {
		t.Errorf("Expected default busy policy queue, got %s", c.busy)
	}
}

func TestParseBusyPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    BusyPolicy
		wantErr bool
	}{
		{"queue", BusyQueue, false},
		{"REJECT", BusyReject, false},
		{"", BusyQueue, false},
		{"drop", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBusyPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBusyPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseBusyPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
