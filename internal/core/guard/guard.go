// Package guard is the interception decision point. It is called
// synchronously for every execution attempt and returns allow or deny.
package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
	"github.com/Lin-Jiong-HDU/execguard/internal/observe"
)

// Verdict is the final decision for an execution attempt.
type Verdict int

const (
	Deny Verdict = iota
	Allow
)

// verdictPending marks observations made before a verdict exists.
const verdictPending = "pending"

// String returns the verdict name.
func (v Verdict) String() string {
	if v == Allow {
		return "allow"
	}
	return "deny"
}

// Confirmer requests a human confirmation and blocks until it resolves.
type Confirmer interface {
	RequestConfirmation(ctx context.Context, command, reason string) confirm.Resolution
}

// Decision is the outcome of one execution attempt.
type Decision struct {
	Verdict Verdict
	Result  security.Result
	// Confirmation is set when a confirmation was requested.
	Confirmation *confirm.Resolution
	Reason       string
	Err          error
}

// Guard combines the classifier and the confirmation coordinator.
type Guard struct {
	classifier *security.Classifier
	confirmer  Confirmer
	sink       observe.Sink
	logger     *slog.Logger
}

// New creates a guard. sink and logger may be nil.
func New(classifier *security.Classifier, confirmer Confirmer, sink observe.Sink, logger *slog.Logger) *Guard {
	if sink == nil {
		sink = observe.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{
		classifier: classifier,
		confirmer:  confirmer,
		sink:       sink,
		logger:     logger,
	}
}

// OnExecAttempt decides whether the command in argv may run. Every error
// path denies.
func (g *Guard) OnExecAttempt(ctx context.Context, argv []string) Decision {
	result, err := g.classifier.ClassifyArgv(argv)
	if err != nil {
		g.sink.Observe(observe.Observation{
			Kind:    observe.KindInvalidInput,
			Verdict: Deny.String(),
			Err:     err,
		})
		return Decision{Verdict: Deny, Reason: "command could not be read", Err: err}
	}

	switch result.Classification {
	case security.ProtectedTarget:
		g.observe(observe.KindProtectedBlocked, result, Deny.String(), nil)
		return Decision{
			Verdict: Deny,
			Result:  result,
			Reason:  fmt.Sprintf("protected target %q", result.Pattern),
		}

	case security.DangerousCommand:
		return g.confirm(ctx, result)

	default:
		g.observe(observe.KindAllowed, result, Allow.String(), nil)
		return Decision{Verdict: Allow, Result: result}
	}
}

// PreExec adapts OnExecAttempt to a pre-execution hook: it returns nil to
// allow and an error wrapping security.ErrPermissionDenied to deny.
func (g *Guard) PreExec(ctx context.Context, argv []string) error {
	d := g.OnExecAttempt(ctx, argv)
	if d.Verdict == Allow {
		return nil
	}
	return fmt.Errorf("%w: %s", security.ErrPermissionDenied, d.Reason)
}

func (g *Guard) confirm(ctx context.Context, result security.Result) Decision {
	reason := fmt.Sprintf("dangerous command %q", result.Pattern)
	g.observe(observe.KindConfirmationNeeded, result, verdictPending, nil)

	res := g.confirmer.RequestConfirmation(ctx, result.Command, reason)

	d := Decision{Result: result, Confirmation: &res}
	if res.Outcome == confirm.Approved {
		d.Verdict = Allow
		d.Reason = reason + " confirmed"
		g.observe(observe.KindConfirmed, result, Allow.String(), &res)
	} else {
		d.Verdict = Deny
		d.Reason = fmt.Sprintf("%s not confirmed (%s)", reason, res.Cause)
		g.observe(observe.KindConfirmationDenied, result, Deny.String(), &res)
	}

	g.logger.Debug("confirmation finished",
		"command", result.Command,
		"verdict", d.Verdict.String(),
		"cause", res.Cause,
	)
	return d
}

func (g *Guard) observe(kind observe.Kind, result security.Result, verdict string, res *confirm.Resolution) {
	o := observe.Observation{
		Kind:           kind,
		Command:        result.Command,
		Classification: result.Classification.String(),
		Pattern:        result.Pattern,
		Verdict:        verdict,
		Truncated:      result.Truncated,
	}
	if res != nil {
		o.RequestID = res.RequestID
		o.Cause = string(res.Cause)
	}
	g.sink.Observe(o)
}
