// Package bright provides a unified API for querying and adjusting display
// backlight brightness across heterogeneous mechanisms (sysfs, DDC/CI via
// ddcutil, xrandr, the light program, USB HID displays).
//
// The package normalizes the differing identifiers, return shapes and failure
// modes of the individual mechanisms into one consistent interface: displays
// discovered by independent methods are deduplicated by EDID, serial or
// name/model, a user-supplied identifier is resolved to one or more concrete
// displays, and get/set/fade operations fan out across the resolved set with
// per-display error isolation.
package bright

import (
	"fmt"
	"strconv"
	"strings"
)

// DisplayInfo describes one display as reported by one brightness method.
//
// MethodIndex is the position of the display within its owning method's
// enumeration and is the only index valid for addressing the display through
// that method. GlobalIndex is assigned per snapshot by the registry and is
// stable only until the next enumeration; it must never be passed back to a
// Method.
type DisplayInfo struct {
	// Name is the human readable display name, usually manufacturer plus
	// model. Empty if unknown.
	Name string

	// Model is the model name of the display. Empty if unknown.
	Model string

	// Manufacturer is the display manufacturer's brand name. Empty if unknown.
	Manufacturer string

	// ManufacturerID is the three letter PNP code of the manufacturer,
	// e.g. "BNQ" for BenQ. Empty if unknown.
	ManufacturerID string

	// Serial is the display serial number or, failing that, some other
	// mechanism-assigned unique identifier. Empty if unknown.
	Serial string

	// EDID is the raw EDID block as a hex string. When present it is the
	// authoritative identity anchor for the display.
	EDID string

	// MethodIndex is the index of this display within the owning method's
	// enumeration. Dense 0..N-1 within one enumeration pass.
	MethodIndex int

	// GlobalIndex is the position of this display in the deduplicated
	// registry snapshot it was returned in.
	GlobalIndex int

	// Method is the brightness method that reported this display. The
	// registry does not manage the method's lifecycle.
	Method Method
}

// Label returns a short human readable identification of the display for use
// in log and error messages.
func (d DisplayInfo) Label() string {
	name := d.Name
	if name == "" {
		if d.Method != nil {
			name = fmt.Sprintf("%s display %d", d.Method.Name(), d.MethodIndex)
		} else {
			name = fmt.Sprintf("display %d", d.GlobalIndex)
		}
	}
	if d.Serial != "" {
		return fmt.Sprintf("%s (%s)", name, d.Serial)
	}
	return name
}

// StableIdentifier returns the most stable identifier available for the
// display, preferring EDID over serial over name over the snapshot index.
// Resolving the returned identifier stays correct even if the registry's
// absolute ordering shifts between enumeration passes, as long as the
// preferred identity fields are populated.
func (d DisplayInfo) StableIdentifier() Identifier {
	switch {
	case d.EDID != "":
		return Query(d.EDID)
	case d.Serial != "":
		return Query(d.Serial)
	case d.Name != "":
		return Query(d.Name)
	default:
		return Index(d.GlobalIndex)
	}
}

// Identifier selects displays from a registry snapshot. A nil Identifier
// selects every display. Index selects by snapshot position, Query matches
// EDID, serial, name and model in that priority order.
type Identifier interface {
	isIdentifier()
}

// Index identifies a display by its position in the deduplicated snapshot.
type Index int

func (Index) isIdentifier() {}

// Query identifies displays by EDID, serial, name or model.
type Query string

func (Query) isIdentifier() {}

// ParseIdentifier converts a CLI style display argument into an Identifier.
// Plain integers become an Index, everything else a Query. The empty string
// yields nil, selecting all displays.
func ParseIdentifier(s string) Identifier {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Index(n)
	}
	return Query(s)
}

// Value is a brightness percentage, either absolute or relative to the
// current level of each addressed display.
type Value struct {
	amount   int
	relative bool
}

// Absolute returns a Value that sets brightness to the given percentage.
func Absolute(percent int) Value {
	return Value{amount: percent}
}

// Relative returns a Value that adjusts brightness by delta percentage
// points relative to the current level of each addressed display.
func Relative(delta int) Value {
	return Value{amount: delta, relative: true}
}

// ParseValue parses a string brightness value. Strings prefixed with '+' or
// '-' are relative adjustments ("+10" means current plus ten points), all
// other numeric strings are absolute percentages. Fractional input is
// truncated toward zero, matching integer percentage semantics.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, fmt.Errorf("empty brightness value")
	}

	relative := strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid brightness value %q: %w", s, err)
	}

	return Value{amount: int(f), relative: relative}, nil
}

// IsRelative reports whether the value is an adjustment relative to the
// current brightness.
func (v Value) IsRelative() bool {
	return v.relative
}

// Resolve converts the value to an absolute, unclamped percentage given the
// current brightness of the target display.
func (v Value) Resolve(current int) int {
	if v.relative {
		return current + v.amount
	}
	return v.amount
}

func (v Value) String() string {
	if v.relative {
		return fmt.Sprintf("%+d", v.amount)
	}
	return strconv.Itoa(v.amount)
}

// clampPercent bounds a brightness percentage to [lower, 100].
func clampPercent(value, lower int) int {
	if value < lower {
		return lower
	}
	if value > 100 {
		return 100
	}
	return value
}

// Reading is the per-display outcome of a batch get or set operation. When
// Err is non-nil the operation failed for this display and Percent is
// meaningless; failures of individual displays do not abort the batch.
type Reading struct {
	Display DisplayInfo
	Percent int
	Err     error
}

// Percents extracts the percentage values from a slice of readings. Failed
// readings contribute -1.
func Percents(readings []Reading) []int {
	out := make([]int, len(readings))
	for i, r := range readings {
		if r.Err != nil {
			out[i] = -1
			continue
		}
		out[i] = r.Percent
	}
	return out
}
