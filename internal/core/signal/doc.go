// Package signal turns discrete input events into confirmation decisions.
//
// An input-event source delivers (code, value) pairs for key presses. The
// Adapter maps codes to one of two labels, "confirm" or "reject", and
// forwards them to the confirmation coordinator. Unknown codes and releases
// are ignored, and a signal that arrives while nothing is pending is a no-op.
package signal
