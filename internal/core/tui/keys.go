package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines key bindings for the confirmation prompt
type keyMap struct {
	Confirm key
	Reject  key
	Quit    key
}

// key represents a key binding with help text
type key struct {
	keys []string
	help string
}

// matches reports whether msg is one of the binding's keys
func (k key) matches(msg tea.KeyMsg) bool {
	s := msg.String()
	for _, candidate := range k.keys {
		if s == candidate {
			return true
		}
	}
	return false
}

// shortHelp returns key bindings for short help view
func (k keyMap) shortHelp() []key {
	return []key{k.Confirm, k.Reject}
}

// fullHelp returns all key bindings for full help view
func (k keyMap) fullHelp() []key {
	return []key{k.Confirm, k.Reject, k.Quit}
}

// Help generates the help view
func (k keyMap) Help() helpWrapper {
	return helpWrapper{
		keyMap: k,
	}
}

// helpWrapper wraps the keyMap for help display
type helpWrapper struct {
	keyMap keyMap
}

// String returns the help text
func (h helpWrapper) String() string {
	var s string
	for _, k := range h.keyMap.fullHelp() {
		if k.help != "" {
			s += k.help + " "
		}
	}
	return s
}

// View returns the help view
func (h helpWrapper) View() string {
	var s string
	for _, k := range h.keyMap.shortHelp() {
		s += "[" + k.help + "] "
	}
	return s
}

// defaultKeyMap creates the default key bindings. Up and "+" stand in for
// volume up, down and "-" for volume down.
func defaultKeyMap() keyMap {
	return keyMap{
		Confirm: key{
			keys: []string{"y", "Y", "up", "+"},
			help: "y/↑ confirm",
		},
		Reject: key{
			keys: []string{"n", "N", "down", "-"},
			help: "n/↓ reject",
		},
		Quit: key{
			keys: []string{"q", "esc", "ctrl+c"},
			help: "q reject and quit",
		},
	}
}
