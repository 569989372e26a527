package bright

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBackendUnavailable indicates that the mechanism behind a brightness
// method (driver, bus, executable) is not present on this system. It is
// recoverable: the method simply contributes no displays.
var ErrBackendUnavailable = errors.New("brightness method unavailable")

// ErrNoMatchingDisplay indicates that a display identifier resolved to zero
// displays.
var ErrNoMatchingDisplay = errors.New("no matching display")

// ErrNoDisplaysDetected indicates that every registered method failed to
// enumerate or reported nothing.
var ErrNoDisplaysDetected = errors.New("no displays detected")

// IndexError indicates that an integer display identifier was outside the
// bounds of the current snapshot. Out-of-range indices are never silently
// clamped.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("display index %d out of range (%d displays detected)", e.Index, e.Count)
}

// GetError wraps a per-display brightness read failure.
type GetError struct {
	Display string
	Err     error
}

func (e *GetError) Error() string {
	return fmt.Sprintf("get brightness of %s: %v", e.Display, e.Err)
}

func (e *GetError) Unwrap() error { return e.Err }

// SetError wraps a per-display brightness write failure.
type SetError struct {
	Display string
	Err     error
}

func (e *SetError) Error() string {
	return fmt.Sprintf("set brightness of %s: %v", e.Display, e.Err)
}

func (e *SetError) Unwrap() error { return e.Err }

// Cause is one member failure inside an AggregateError.
type Cause struct {
	Display string
	Kind    string
	Err     error
}

// AggregateError is returned when every display in a batch operation failed.
// Individual failures inside a partially successful batch never raise; they
// surface as failed Readings instead.
type AggregateError struct {
	Op     string
	Causes []Cause

	// Verbose switches Error() from a single-line summary to a full
	// per-display cause breakdown.
	Verbose bool
}

func (e *AggregateError) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("%s: no valid output received from any brightness method", e.Op)
	}

	if !e.Verbose {
		parts := make([]string, len(e.Causes))
		for i, c := range e.Causes {
			parts[i] = fmt.Sprintf("%s: %s", c.Display, c.Kind)
		}
		return fmt.Sprintf("%s failed for all %d displays: %s", e.Op, len(e.Causes), strings.Join(parts, "; "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s failed for all %d displays:", e.Op, len(e.Causes))
	for _, c := range e.Causes {
		fmt.Fprintf(&b, "\n\t%s -> %s: %v", c.Display, c.Kind, c.Err)
	}
	return b.String()
}

// Unwrap exposes the member causes to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Causes))
	for i, c := range e.Causes {
		errs[i] = c.Err
	}
	return errs
}

// errKind names the category of a failure for aggregate error reporting.
func errKind(err error) string {
	var idx *IndexError
	var get *GetError
	var set *SetError
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return "BackendUnavailable"
	case errors.Is(err, ErrNoMatchingDisplay):
		return "NoMatchingDisplay"
	case errors.Is(err, ErrNoDisplaysDetected):
		return "NoDisplaysDetected"
	case errors.As(err, &idx):
		return "IndexOutOfRange"
	case errors.As(err, &get):
		return "BrightnessGetError"
	case errors.As(err, &set):
		return "BrightnessSetError"
	default:
		return "Error"
	}
}
