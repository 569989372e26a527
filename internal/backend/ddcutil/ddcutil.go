// Package ddcutil adjusts external monitor brightness over DDC/CI by
// shelling out to the ddcutil executable.
package ddcutil

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/brightctl/bright"
)

const methodName = "ddcutil"

// vcpBrightness is the VCP feature code for the luminance control.
const vcpBrightness = "10"

// commandTimeout bounds a single ddcutil invocation. DDC/CI is slow but a
// healthy call never takes this long.
const commandTimeout = 10 * time.Second

// Runner executes the ddcutil binary and returns its stdout. Swappable for
// tests.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Backend implements bright.Method on top of the ddcutil program.
type Backend struct {
	run     Runner
	logger  zerolog.Logger
	limiter *rate.Limiter

	// sleepMultiplier is forwarded to ddcutil to shorten its internal
	// DDC request pacing.
	sleepMultiplier float64

	// maxValues remembers the VCP maximum per display identity so that
	// set calls can scale percentages for panels whose maximum is not 100.
	// Fades run get/set from one goroutine per display, hence the lock.
	maxMu     sync.Mutex
	maxValues map[string]int
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

// New returns a ddcutil Backend. If the executable cannot be found the error
// wraps bright.ErrBackendUnavailable.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		logger: zerolog.Nop(),
		// DDC/CI misbehaves when hammered; cap calls well below what a
		// fast fade would otherwise issue.
		limiter:         rate.NewLimiter(rate.Limit(4), 2),
		sleepMultiplier: 0.5,
		maxValues:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.run == nil {
		exe, err := exec.LookPath("ddcutil")
		if err != nil {
			return nil, fmt.Errorf("%w: ddcutil executable not found", bright.ErrBackendUnavailable)
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
	out, err := b.exec("detect", "-v", b.multiplierArg())
	if err != nil {
		return nil, fmt.Errorf("ddcutil detect: %w", err)
	}

	displays := parseDetect(string(out))
	infos := make([]bright.DisplayInfo, len(displays))
	for i, d := range displays {
		infos[i] = d.DisplayInfo
		infos[i].MethodIndex = i
	}
	return infos, nil
}

// GetBrightness implements bright.Method.
func (b *Backend) GetBrightness(display int) ([]int, error) {
	displays, err := b.selectDisplays(display)
	if err != nil {
		return nil, err
	}

	values := make([]int, 0, len(displays))
	for _, d := range displays {
		out, err := b.exec("getvcp", vcpBrightness, "-t", "-b", strconv.Itoa(d.bus), b.multiplierArg())
		if err != nil {
			return nil, fmt.Errorf("ddcutil getvcp bus %d: %w", d.bus, err)
		}

		current, max, err := parseVCP(string(out))
		if err != nil {
			return nil, fmt.Errorf("ddcutil getvcp bus %d: %w", d.bus, err)
		}

		b.storeMax(d.identity(), max)
		if max != 100 && max > 0 {
			current = current * 100 / max
		}
		values = append(values, current)
	}
	return values, nil
}

// SetBrightness implements bright.Method.
func (b *Backend) SetBrightness(value int, display int) error {
	displays, err := b.selectDisplays(display)
	if err != nil {
		return err
	}

	for _, d := range displays {
		// scaling requires the panel's VCP maximum, learned via getvcp
		if _, ok := b.loadMax(d.identity()); !ok {
			if _, err := b.GetBrightness(d.DisplayInfo.MethodIndex); err != nil {
				return err
			}
		}

		raw := value
		if max, ok := b.loadMax(d.identity()); ok && max != 100 && max > 0 {
			raw = value * max / 100
		}

		if _, err := b.exec("setvcp", vcpBrightness, strconv.Itoa(raw), "-b", strconv.Itoa(d.bus), b.multiplierArg()); err != nil {
			return fmt.Errorf("ddcutil setvcp bus %d: %w", d.bus, err)
		}
	}
	return nil
}

func (b *Backend) exec(args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return b.run(ctx, args...)
}

func (b *Backend) multiplierArg() string {
	return fmt.Sprintf("--sleep-multiplier=%g", b.sleepMultiplier)
}

func (b *Backend) selectDisplays(display int) ([]detectedDisplay, error) {
	out, err := b.exec("detect", "-v", b.multiplierArg())
	if err != nil {
		return nil, fmt.Errorf("ddcutil detect: %w", err)
	}

	displays := parseDetect(string(out))
	for i := range displays {
		displays[i].DisplayInfo.MethodIndex = i
	}
	if display == bright.AllDisplays {
		return displays, nil
	}
	if display < 0 || display >= len(displays) {
		return nil, fmt.Errorf("display index %d out of range (%d ddcutil displays)", display, len(displays))
	}
	return displays[display : display+1], nil
}

func (b *Backend) storeMax(identity string, max int) {
	b.maxMu.Lock()
	defer b.maxMu.Unlock()
	b.maxValues[identity] = max
}

func (b *Backend) loadMax(identity string) (int, bool) {
	b.maxMu.Lock()
	defer b.maxMu.Unlock()
	max, ok := b.maxValues[identity]
	return max, ok
}

// identity keys the per-panel VCP maximum cache.
func (d detectedDisplay) identity() string {
	return d.DisplayInfo.Name + "|" + d.DisplayInfo.Serial + "|" + strconv.Itoa(d.bus)
}
