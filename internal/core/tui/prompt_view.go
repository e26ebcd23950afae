package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/confirm"
	"github.com/charmbracelet/lipgloss"
)

const maxCommandWidth = 72

// Renderer handles TUI rendering
type Renderer struct {
	width int
	style *StyleConfig
}

// StyleConfig defines visual styles
type StyleConfig struct {
	TitleColor   lipgloss.Color
	SubtleColor  lipgloss.Color
	ErrorColor   lipgloss.Color
	SuccessColor lipgloss.Color
	WarningColor lipgloss.Color
	BorderColor  lipgloss.Color
}

// DefaultStyleConfig returns the default style configuration
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		TitleColor:   lipgloss.Color("11"),  // Yellow
		SubtleColor:  lipgloss.Color("241"), // Grey
		ErrorColor:   lipgloss.Color("9"),   // Red
		SuccessColor: lipgloss.Color("10"),  // Green
		WarningColor: lipgloss.Color("11"),  // Yellow
		BorderColor:  lipgloss.Color("8"),   // Dark grey
	}
}

// NewRenderer creates a new TUI renderer
func NewRenderer(width int) *Renderer {
	return &Renderer{
		width: width,
		style: DefaultStyleConfig(),
	}
}

// Render renders the full prompt view
func (r *Renderer) Render(m model) string {
	var b strings.Builder
	b.WriteString(r.renderHeader())
	b.WriteString("\n")
	b.WriteString(r.renderCommand(m.info))
	b.WriteString("\n")
	if m.decided != confirm.Pending || m.final != nil {
		b.WriteString(r.renderOutcome(m))
	} else {
		b.WriteString(r.renderCountdown(m.remaining()))
		b.WriteString("\n")
		b.WriteString(r.renderFooter(m))
	}
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(r.style.TitleColor).
		Bold(true).
		Render("⚠ confirmation required")

	border := lipgloss.NewStyle().
		Foreground(r.style.BorderColor).
		Render(strings.Repeat("─", r.borderWidth()))

	return title + "\n" + border
}

func (r *Renderer) borderWidth() int {
	if r.width > 0 && r.width < 62 {
		return r.width
	}
	return 62
}

func (r *Renderer) renderCommand(info confirm.Info) string {
	cmdStr := info.Command
	if len(cmdStr) > maxCommandWidth {
		cmdStr = cmdStr[:maxCommandWidth-3] + "..."
	}

	cmd := lipgloss.NewStyle().Bold(true).Render(cmdStr)
	line := "  " + cmd + "\n"
	if info.Reason != "" {
		line += lipgloss.NewStyle().
			Foreground(r.style.WarningColor).
			Render("  "+info.Reason) + "\n"
	}
	return line
}

func (r *Renderer) renderCountdown(left time.Duration) string {
	secs := left.Seconds()
	color := r.style.SubtleColor
	if left < 2*time.Second {
		color = r.style.ErrorColor
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Render(fmt.Sprintf("  denied automatically in %.1fs", secs))
}

func (r *Renderer) renderOutcome(m model) string {
	outcome := m.decided
	if m.final != nil {
		outcome = m.final.Outcome
	}

	var symbol string
	var color lipgloss.Color
	switch outcome {
	case confirm.Approved:
		symbol = "✓ confirmed"
		color = r.style.SuccessColor
	default:
		symbol = "✗ rejected"
		color = r.style.ErrorColor
	}
	if m.final != nil && m.final.Cause != confirm.CauseSignal {
		symbol += " (" + string(m.final.Cause) + ")"
	}

	return lipgloss.NewStyle().Foreground(color).Render("  " + symbol)
}

func (r *Renderer) renderFooter(m model) string {
	style := lipgloss.NewStyle().
		Foreground(r.style.SubtleColor)

	return "\n  " + style.Render(m.keys.Help().View())
}
