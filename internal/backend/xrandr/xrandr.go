// Package xrandr adjusts display brightness through the xrandr executable.
//
// xrandr brightness is a software gamma multiplier applied by the X server,
// not a backlight level, but it is often the only mechanism that works for
// external monitors without DDC/CI access.
package xrandr

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightctl/bright"
	"github.com/brightctl/bright/internal/edid"
)

const methodName = "xrandr"

const commandTimeout = 5 * time.Second

// Runner executes the xrandr binary and returns its stdout. Swappable for
// tests.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Backend implements bright.Method on top of xrandr.
type Backend struct {
	run    Runner
	logger zerolog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner substitutes the process runner, for tests.
func WithRunner(run Runner) Option {
	return func(b *Backend) {
		b.run = run
	}
}

// WithLogger sets the backend logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// New returns an xrandr Backend. If the executable cannot be found the error
// wraps bright.ErrBackendUnavailable.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}

	if b.run == nil {
		exe, err := exec.LookPath("xrandr")
		if err != nil {
			return nil, fmt.Errorf("%w: xrandr executable not found", bright.ErrBackendUnavailable)
		}
		b.run = func(ctx context.Context, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, exe, args...).Output()
		}
	}
	return b, nil
}

// Name implements bright.Method.
func (b *Backend) Name() string { return methodName }

// GetDisplayInfo implements bright.Method.
func (b *Backend) GetDisplayInfo() ([]bright.DisplayInfo, error) {
	outputs, err := b.query()
	if err != nil {
		return nil, err
	}

	infos := make([]bright.DisplayInfo, len(outputs))
	for i, o := range outputs {
		info := bright.DisplayInfo{
			Name:        o.iface,
			Serial:      o.iface,
			EDID:        o.edid,
			MethodIndex: i,
		}
		if o.edid != "" {
			if id, err := edid.ParseHex(o.edid); err == nil {
				applyIdentity(&info, id)
			} else {
				b.logger.Debug().Str("output", o.iface).Err(err).Msg("unparseable edid")
			}
		}
		infos[i] = info
	}
	return infos, nil
}

// GetBrightness implements bright.Method.
func (b *Backend) GetBrightness(display int) ([]int, error) {
	outputs, err := b.selectOutputs(display)
	if err != nil {
		return nil, err
	}

	values := make([]int, len(outputs))
	for i, o := range outputs {
		values[i] = o.brightness
	}
	return values, nil
}

// SetBrightness implements bright.Method.
func (b *Backend) SetBrightness(value int, display int) error {
	outputs, err := b.selectOutputs(display)
	if err != nil {
		return err
	}

	fraction := strconv.FormatFloat(float64(value)/100, 'f', 2, 64)
	for _, o := range outputs {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		_, err := b.run(ctx, "--output", o.iface, "--brightness", fraction)
		cancel()
		if err != nil {
			return fmt.Errorf("xrandr set %s: %w", o.iface, err)
		}
	}
	return nil
}

func (b *Backend) query() ([]output, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	raw, err := b.run(ctx, "--verbose")
	if err != nil {
		return nil, fmt.Errorf("xrandr --verbose: %w", err)
	}
	return parseVerbose(string(raw)), nil
}

func (b *Backend) selectOutputs(display int) ([]output, error) {
	outputs, err := b.query()
	if err != nil {
		return nil, err
	}
	if display == bright.AllDisplays {
		return outputs, nil
	}
	if display < 0 || display >= len(outputs) {
		return nil, fmt.Errorf("display index %d out of range (%d xrandr outputs)", display, len(outputs))
	}
	return outputs[display : display+1], nil
}

// output is one connected display from `xrandr --verbose`.
type output struct {
	iface      string
	edid       string
	brightness int
}

// parseVerbose extracts the connected outputs, their EDIDs and current
// brightness from `xrandr --verbose` output.
func parseVerbose(raw string) []output {
	var outputs []output
	var cur *output
	inEDID := false

	for _, line := range strings.Split(raw, "\n") {
		indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")

		if !indented {
			inEDID = false
			fields := strings.Fields(line)
			if len(fields) >= 2 && fields[1] == "connected" {
				if cur != nil {
					outputs = append(outputs, *cur)
				}
				cur = &output{iface: fields[0], brightness: 100}
			} else if len(fields) >= 2 && fields[1] == "disconnected" && cur != nil {
				outputs = append(outputs, *cur)
				cur = nil
			}
			continue
		}

		if cur == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "EDID:"):
			inEDID = true

		case inEDID && isHexLine(trimmed):
			cur.edid += trimmed

		case strings.HasPrefix(trimmed, "Brightness:"):
			inEDID = false
			if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(trimmed, "Brightness:")), 64); err == nil {
				cur.brightness = int(math.Round(f * 100))
			}

		default:
			inEDID = false
		}
	}
	if cur != nil {
		outputs = append(outputs, *cur)
	}
	return outputs
}

func isHexLine(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func applyIdentity(info *bright.DisplayInfo, id edid.Identity) {
	if id.ManufacturerID != "" {
		info.ManufacturerID = id.ManufacturerID
	}
	if id.Manufacturer != "" {
		info.Manufacturer = id.Manufacturer
	}
	if id.Model != "" {
		info.Model = id.Model
	}
	if id.Name != "" {
		info.Name = id.Name
	}
	if id.Serial != "" {
		info.Serial = id.Serial
	}
}
