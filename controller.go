package bright

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Config carries the tunable behavior of a Controller. The zero value is
// usable; New fills in platform defaults.
type Config struct {
	// Method restricts all operations to one registered method when set.
	Method string

	// AllowDuplicates keeps records describing the same physical display
	// reported by several methods instead of deduplicating them.
	AllowDuplicates bool

	// VerboseErrors switches aggregate errors from one-line summaries to a
	// full per-display cause breakdown.
	VerboseErrors bool

	// CacheTTL bounds how long a registry snapshot may be reused. Zero
	// disables caching so every operation re-enumerates.
	CacheTTL time.Duration

	// EnumRetries is how many times an empty enumeration is retried before
	// giving up, with RetryDelay between attempts. The retry loop absorbs
	// transient empty results some mechanisms produce right after a
	// hotplug event.
	EnumRetries int
	RetryDelay  time.Duration
}

// Controller is the dispatch layer: it resolves display identifiers against
// the registered methods and fans out brightness operations across the
// resolved displays. A Controller holds no mutable display state; every
// top-level operation works on a fresh (or short-lived cached) enumeration
// snapshot, so a single Controller is safe for concurrent use.
type Controller struct {
	methods    *MethodSet
	cfg        Config
	logger     zerolog.Logger
	cache      *snapshotCache
	lowerBound int
	sleep      func(time.Duration)
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the controller configuration wholesale.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger used for per-backend failure reporting.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLowerBound overrides the platform default lower brightness clamp that
// applies when a set operation is not forced.
func WithLowerBound(bound int) Option {
	return func(c *Controller) {
		c.lowerBound = bound
	}
}

// New creates a Controller over the given method registry. The registry is
// taken as-is: platform probing belongs to the caller (see the platform
// package), and tests hand in a substitute MethodSet instead of mutating a
// shared one.
func New(methods *MethodSet, opts ...Option) *Controller {
	c := &Controller{
		methods: methods,
		cfg: Config{
			EnumRetries: 3,
			RetryDelay:  400 * time.Millisecond,
		},
		logger: zerolog.Nop(),
		sleep:  time.Sleep,
	}

	// Most Linux backlights turn the panel off entirely at 0%, so the
	// unforced lower bound is 1 there. Elsewhere 0 is safe.
	if runtime.GOOS == "linux" {
		c.lowerBound = 1
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cache = newSnapshotCache(c.cfg.CacheTTL)
	return c
}

// Methods returns the method registry mapping names to capabilities.
func (c *Controller) Methods() map[string]Method {
	out := make(map[string]Method, c.methods.Len())
	for _, name := range c.methods.Names() {
		m, _ := c.methods.Get(name)
		out[name] = m
	}
	return out
}

// InvalidateCache drops any cached registry snapshot. Call after a known
// topology change (e.g. a hotplug event) to force re-enumeration.
func (c *Controller) InvalidateCache() {
	c.cache.invalidate()
}

// Resolve maps a display identifier plus an optional method filter to the
// concrete display records the identifier denotes. A nil identifier selects
// the full filtered snapshot.
func (c *Controller) Resolve(display Identifier, method string) ([]DisplayInfo, error) {
	records, err := c.Snapshot(method, c.cfg.AllowDuplicates)
	if err != nil {
		return nil, err
	}
	return Match(display, records)
}

// GetOpts scopes a GetBrightness call.
type GetOpts struct {
	Display Identifier
	Method  string
}

// GetBrightness returns the current brightness of the selected displays,
// one Reading per display. Per-display failures are isolated into the
// corresponding Reading; the call errors only when no display resolves or
// every resolved display fails.
func (c *Controller) GetBrightness(opts GetOpts) ([]Reading, error) {
	records, err := c.Resolve(opts.Display, c.methodFilter(opts.Method))
	if err != nil {
		return nil, err
	}

	readings := make([]Reading, 0, len(records))
	for _, rec := range records {
		percent, err := readBrightness(rec)
		if err != nil {
			err = &GetError{Display: rec.Label(), Err: err}
			c.logger.Debug().Str("display", rec.Label()).Err(err).Msg("brightness read failed")
		}
		readings = append(readings, Reading{Display: rec, Percent: percent, Err: err})
	}

	return readings, c.checkAggregate("get brightness", readings)
}

// SetOpts scopes a SetBrightness call.
type SetOpts struct {
	Display Identifier
	Method  string

	// Force bypasses the platform lower clamp, allowing 0% even where
	// that turns the backlight off.
	Force bool

	// NoReturn suppresses the post-set readback; the returned readings
	// then carry no Percent values.
	NoReturn bool
}

// SetBrightness changes the brightness of the selected displays. Relative
// values are resolved per display against that display's own current level,
// so each display's adjustment is computed off its own baseline. A display
// whose current level cannot be read falls back to a baseline of 0 for the
// relative computation.
//
// Per-display failures are isolated; the call errors only when no display
// resolves or every resolved display fails.
func (c *Controller) SetBrightness(value Value, opts SetOpts) ([]Reading, error) {
	records, err := c.Resolve(opts.Display, c.methodFilter(opts.Method))
	if err != nil {
		return nil, err
	}

	lower := 0
	if !opts.Force {
		lower = c.lowerBound
	}

	readings := make([]Reading, 0, len(records))
	for _, rec := range records {
		readings = append(readings, c.setOne(rec, value, lower, opts.NoReturn))
	}

	return readings, c.checkAggregate("set brightness", readings)
}

// setOne applies a set operation to a single record, addressing the backend
// strictly by the record's MethodIndex.
func (c *Controller) setOne(rec DisplayInfo, value Value, lower int, noReturn bool) Reading {
	target := value.Resolve(0)
	if value.IsRelative() {
		current, err := readBrightness(rec)
		if err != nil {
			// Baseline 0: the adjustment still lands somewhere sane
			// once clamped, instead of failing the whole display.
			c.logger.Debug().Str("display", rec.Label()).Err(err).
				Msg("current brightness unavailable, using baseline 0 for relative value")
			current = 0
		}
		target = value.Resolve(current)
	}
	target = clampPercent(target, lower)

	if err := rec.Method.SetBrightness(target, rec.MethodIndex); err != nil {
		err = &SetError{Display: rec.Label(), Err: err}
		c.logger.Debug().Str("display", rec.Label()).Err(err).Msg("brightness write failed")
		return Reading{Display: rec, Err: err}
	}

	if noReturn {
		return Reading{Display: rec, Percent: target}
	}

	percent, err := readBrightness(rec)
	if err != nil {
		err = &GetError{Display: rec.Label(), Err: err}
	}
	return Reading{Display: rec, Percent: percent, Err: err}
}

// ListMonitors returns the names of all detected displays.
func (c *Controller) ListMonitors(method string) ([]string, error) {
	records, err := c.Snapshot(c.methodFilter(method), c.cfg.AllowDuplicates)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Name
	}
	return names, nil
}

// ListMonitorsInfo returns the full records of all detected displays.
func (c *Controller) ListMonitorsInfo(method string, allowDuplicates bool) ([]DisplayInfo, error) {
	return c.Snapshot(c.methodFilter(method), allowDuplicates)
}

// methodFilter applies the configured default method when the caller did
// not name one.
func (c *Controller) methodFilter(method string) string {
	if method != "" {
		return method
	}
	return c.cfg.Method
}

// checkAggregate converts an all-failed batch into an AggregateError.
func (c *Controller) checkAggregate(op string, readings []Reading) error {
	if len(readings) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoMatchingDisplay)
	}

	var causes []Cause
	for _, r := range readings {
		if r.Err != nil {
			causes = append(causes, Cause{
				Display: r.Display.Label(),
				Kind:    errKind(r.Err),
				Err:     r.Err,
			})
		}
	}
	if len(causes) < len(readings) {
		return nil
	}
	return &AggregateError{Op: op, Causes: causes, Verbose: c.cfg.VerboseErrors}
}

// readBrightness fetches the single brightness value for one record via its
// owning method's local index.
func readBrightness(rec DisplayInfo) (int, error) {
	values, err := rec.Method.GetBrightness(rec.MethodIndex)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("method %s returned no value for display %d", rec.Method.Name(), rec.MethodIndex)
	}
	return values[0], nil
}
