// Package light adjusts backlight brightness through the light executable,
// which handles the sysfs permission dance on systems where it is installed.
package light

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/brightctl/bright"
)

const methodName = "light"

const commandTimeout = 5 * time.Second

// Runner executes the light binary and returns its stdout. Swappable for
// tests.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Backend implements bright.Method on top of the light program.
type Backend struct {
	run Runner
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner substitutes the process runner, for tests.
func WithRunner(run Runner) Option {
	return func(b *Backend) {
		b.run = run
	}
}

// New returns a light Backend. If the executable cannot be found the error
// wraps bright.ErrBackendUnavailable.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}

	if b.run == nil {
		exe, err := exec.LookPath("light")
		if err != nil {
			return nil, fmt.Errorf("%w: light executable not found", bright.ErrBackendUnavailable)
		}
		b.run = func(ctx context.Context, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, exe, args...).Output()
		}
	}
	return b, nil
}

// Name implements bright.Method.
func (b *Backend) Name() string { return methodName }

// GetDisplayInfo implements bright.Method. The light program addresses
// sysfs backlight devices; `light -L` lists them.
func (b *Backend) GetDisplayInfo() ([]bright.DisplayInfo, error) {
	devices, err := b.listDevices()
	if err != nil {
		return nil, err
	}

	infos := make([]bright.DisplayInfo, len(devices))
	for i, dev := range devices {
		name := dev[strings.LastIndex(dev, "/")+1:]
		infos[i] = bright.DisplayInfo{
			Name:        name,
			Serial:      name,
			MethodIndex: i,
		}
	}
	return infos, nil
}

// GetBrightness implements bright.Method.
func (b *Backend) GetBrightness(display int) ([]int, error) {
	devices, err := b.selectDevices(display)
	if err != nil {
		return nil, err
	}

	values := make([]int, 0, len(devices))
	for _, dev := range devices {
		out, err := b.exec("-G", "-s", dev)
		if err != nil {
			return nil, fmt.Errorf("light -G %s: %w", dev, err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
		if err != nil {
			return nil, fmt.Errorf("light -G %s: unexpected output %q", dev, strings.TrimSpace(string(out)))
		}
		values = append(values, int(math.Round(f)))
	}
	return values, nil
}

// SetBrightness implements bright.Method.
func (b *Backend) SetBrightness(value int, display int) error {
	devices, err := b.selectDevices(display)
	if err != nil {
		return err
	}

	for _, dev := range devices {
		if _, err := b.exec("-S", strconv.Itoa(value), "-s", dev); err != nil {
			return fmt.Errorf("light -S %s: %w", dev, err)
		}
	}
	return nil
}

// listDevices returns the sysfs backlight controller paths light knows, in
// stable output order.
func (b *Backend) listDevices() ([]string, error) {
	out, err := b.exec("-L")
	if err != nil {
		return nil, fmt.Errorf("light -L: %w", err)
	}

	var devices []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "sysfs/backlight/") {
			devices = append(devices, line)
		}
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: light reports no backlight controllers", bright.ErrBackendUnavailable)
	}
	return devices, nil
}

func (b *Backend) selectDevices(display int) ([]string, error) {
	devices, err := b.listDevices()
	if err != nil {
		return nil, err
	}
	if display == bright.AllDisplays {
		return devices, nil
	}
	if display < 0 || display >= len(devices) {
		return nil, fmt.Errorf("display index %d out of range (%d light controllers)", display, len(devices))
	}
	return devices[display : display+1], nil
}

func (b *Backend) exec(args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return b.run(ctx, args...)
}
