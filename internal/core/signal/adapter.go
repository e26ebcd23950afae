package signal

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// Label is the meaning of an input event.
type Label string

const (
	LabelConfirm Label = "confirm"
	LabelReject  Label = "reject"
)

// ParseLabel parses a label name.
func ParseLabel(s string) (Label, error) {
	switch l := Label(strings.ToLower(strings.TrimSpace(s))); l {
	case LabelConfirm, LabelReject:
		return l, nil
	default:
		return "", fmt.Errorf("invalid signal label: %q", s)
	}
}

// Linux input key codes of the default confirmation keys.
const (
	KeyVolumeDown uint16 = 114
	KeyVolumeUp   uint16 = 115
)

// Event is a key event delivered by an input source.
type Event struct {
	Code uint16
	// Value is non-zero for a press.
	Value int32
}

// DefaultLabels maps volume up to confirm and volume down to reject.
func DefaultLabels() map[uint16]Label {
	return map[uint16]Label{
		KeyVolumeUp:   LabelConfirm,
		KeyVolumeDown: LabelReject,
	}
}

// Resolver is the part of the confirmation coordinator the adapter drives.
type Resolver interface {
	Approve() bool
	Deny() bool
}

// Adapter forwards labelled events to a Resolver.
type Adapter struct {
	resolver Resolver
	labels   map[uint16]Label
	logger   *slog.Logger
}

// NewAdapter creates an adapter. A nil label table selects DefaultLabels.
func NewAdapter(resolver Resolver, labels map[uint16]Label, logger *slog.Logger) *Adapter {
	if labels == nil {
		labels = DefaultLabels()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		resolver: resolver,
		labels:   maps.Clone(labels),
		logger:   logger,
	}
}

// Handle processes one input event. It reports whether the event resolved
// a pending confirmation.
func (a *Adapter) Handle(ev Event) bool {
	if ev.Value == 0 {
		return false
	}
	label, ok := a.labels[ev.Code]
	if !ok {
		return false
	}
	return a.HandleLabel(label)
}

// HandleLabel processes an event that is already labelled.
func (a *Adapter) HandleLabel(label Label) bool {
	var resolved bool
	switch label {
	case LabelConfirm:
		resolved = a.resolver.Approve()
	case LabelReject:
		resolved = a.resolver.Deny()
	default:
		return false
	}

	if !resolved {
		a.logger.Debug("signal ignored, no pending confirmation", "label", string(label))
	} else {
		a.logger.Info("signal delivered", "label", string(label))
	}
	return resolved
}
