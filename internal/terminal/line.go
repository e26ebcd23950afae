package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	"github.com/Lin-Jiong-HDU/execguard/internal/core/signal"
)

// Resolver resolves a specific confirmation request
type Resolver interface {
	Resolve(id string, outcome confirm.Outcome) bool
}

var errNilResolver = errors.New("nil resolver")

// answer is a line read on behalf of one armed request
type answer struct {
	id   string
	text string
}

// LineSource reads confirmation answers from a line-oriented reader such as
// stdin. It prints a prompt whenever a request is armed, so it doubles as a
// confirm.Notifier. A line is only read while a request is armed, and the
// answer resolves that request by ID, so piped or late answers never land on
// a later request.
type LineSource struct {
	input  io.Reader
	output io.Writer
	// wanted carries the ID of the request the next line is read for
	wanted chan string

	mu       sync.Mutex
	resolver Resolver
	current  string
}

// NewLineSource creates a line source. Nil input and output select stdin
// and stderr.
func NewLineSource(input io.Reader, output io.Writer) *LineSource {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stderr
	}
	return &LineSource{input: input, output: output, wanted: make(chan string, 1)}
}

// Bind sets the resolver answers are sent to
func (s *LineSource) Bind(r Resolver) error {
	if r == nil {
		return errNilResolver
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = r
	return nil
}

// Armed displays the confirmation prompt
func (s *LineSource) Armed(info confirm.Info) {
	s.mu.Lock()
	s.current = info.ID
	s.mu.Unlock()
	defer s.wantLine(info.ID)

	fmt.Fprintf(s.output, "\n⚠️  confirmation required\n\n")
	fmt.Fprintf(s.output, "command: %s\n", info.Command)
	if info.Reason != "" {
		fmt.Fprintf(s.output, "reason:  %s\n", info.Reason)
	}
	if !info.Deadline.IsZero() {
		fmt.Fprintf(s.output, "denied automatically after %s\n", info.Deadline.Sub(info.ArmedAt))
	}
	fmt.Fprintf(s.output, "\n[y] confirm  [n] reject\n> ")
}

// Resolved reports the outcome
func (s *LineSource) Resolved(info confirm.Info, res confirm.Resolution) {
	s.mu.Lock()
	if s.current == info.ID {
		s.current = ""
	}
	s.mu.Unlock()

	select {
	case <-s.wanted:
	default:
	}

	switch {
	case res.Approved():
		fmt.Fprintln(s.output, "✓ confirmed")
	case res.Cause == confirm.CauseSignal:
		fmt.Fprintln(s.output, "✗ rejected")
	default:
		fmt.Fprintf(s.output, "\n✗ rejected (%s)\n", res.Cause)
	}
}

// Run reads one answer per armed request until ctx is done. Input is only
// consulted while a prompt is armed: end of input or a read error at that
// point also ends Run, with nil for end of input. While no prompt is armed,
// Run returns only when ctx is done.
func (s *LineSource) Run(ctx context.Context) error {
	answers := make(chan answer)
	errc := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(s.input)
		for {
			var id string
			select {
			case id = <-s.wanted:
			case <-ctx.Done():
				return
			}
			if !scanner.Scan() {
				errc <- scanner.Err()
				return
			}
			select {
			case answers <- answer{id: id, text: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case a := <-answers:
			if !s.handleAnswer(a) {
				s.wantLine(a.id)
			}
		}
	}
}

// wantLine lets Run read one more line for request id if it is still
// pending
func (s *LineSource) wantLine(id string) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if id == "" || id != current {
		return
	}
	select {
	case s.wanted <- id:
	default:
	}
}

// parseAnswer maps a line to a label. y/yes and n/no are accepted along
// with the label names.
func parseAnswer(line string) (signal.Label, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return signal.LabelConfirm, true
	case "n", "no":
		return signal.LabelReject, true
	}
	label, err := signal.ParseLabel(line)
	if err != nil {
		return "", false
	}
	return label, true
}

// handleAnswer resolves the request the line was read for. It returns
// false when the line was not an answer.
func (s *LineSource) handleAnswer(a answer) bool {
	if strings.TrimSpace(a.text) == "" {
		return false
	}

	label, ok := parseAnswer(a.text)
	if !ok {
		s.mu.Lock()
		pending := s.current == a.id
		s.mu.Unlock()
		if pending {
			fmt.Fprintf(s.output, "invalid answer, enter y/n: ")
		}
		return false
	}

	outcome := confirm.Denied
	if label == signal.LabelConfirm {
		outcome = confirm.Approved
	}

	s.mu.Lock()
	resolver := s.resolver
	s.mu.Unlock()

	if resolver != nil {
		resolver.Resolve(a.id, outcome)
	}
	return true
}
