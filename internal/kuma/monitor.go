package kuma

import (
	"fmt"
	"strings"
)

// Fallback values substituted when the backend supplies no metadata for
// a monitor. Every Monitor leaving this package has a non-empty Name
// and Group.
const (
	DefaultGroup      = "Ungrouped"
	fallbackNameLabel = "Monitor %s"
)

// Status is the canonical health classification of a monitor.
//
// Status is a string type that holds one of four predefined values:
// [StatusUp], [StatusDown], [StatusPending], or [StatusUnknown].
// Raw backend codes never leave the normalizers; consumers only ever
// see these four values.
type Status string

const (
	// StatusUp indicates the monitor's last heartbeat succeeded.
	StatusUp Status = "up"

	// StatusDown indicates the monitor's last heartbeat failed.
	StatusDown Status = "down"

	// StatusPending indicates the backend has not yet decided
	// (typically a monitor that was just created or is mid-retry).
	StatusPending Status = "pending"

	// StatusUnknown indicates the backend reported a code or label
	// outside the known set.
	StatusUnknown Status = "unknown"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ClassifyCode maps a numeric backend status code to a [Status].
//
// The mapping follows the Uptime Kuma convention: 1=up, 0=down,
// 2=pending. Every other integer maps to [StatusUnknown], so the
// function is total over all inputs.
func ClassifyCode(code int) Status {
	switch code {
	case 1:
		return StatusUp
	case 0:
		return StatusDown
	case 2:
		return StatusPending
	default:
		return StatusUnknown
	}
}

// ClassifyLabel maps a textual status field to a [Status].
//
// Matching is case-insensitive against the four canonical labels;
// anything else maps to [StatusUnknown].
func ClassifyLabel(label string) Status {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "up":
		return StatusUp
	case "down":
		return StatusDown
	case "pending":
		return StatusPending
	default:
		return StatusUnknown
	}
}

// Monitor is the canonical record for one probe's current state,
// produced by the normalizers regardless of which backend shape the
// data came from.
type Monitor struct {
	// ID is the backend's identifier for the monitor. Opaque; unique
	// within one backend.
	ID string

	// Name is the display name. Never empty: monitors missing from the
	// metadata listing get "Monitor {id}".
	Name string

	// Group is the category label. Never empty: defaults to
	// [DefaultGroup] when the backend supplies none.
	Group string

	// Status is the canonical classification of the latest heartbeat.
	Status Status

	// Ping is the latest latency sample in milliseconds. Nil when the
	// backend provided no numeric value.
	Ping *float64

	// Uptime is the 24h uptime percentage in [0,100], derived from the
	// backend's fraction. Nil when the backend provided none.
	Uptime *float64
}

// fallbackName returns the display name used when metadata has none.
func fallbackName(id string) string {
	return fmt.Sprintf(fallbackNameLabel, id)
}
