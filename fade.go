// SPDX-License-Identifier: GPL-3.0-only

package bright

import (
	"context"
	"math"
	"sync"
	"time"
)

// FadeOpts controls a fade operation.
type FadeOpts struct {
	Display Identifier
	Method  string

	// Start is the brightness to fade from. Nil fades from each display's
	// current level.
	Start *Value

	// Interval is the intended delay between steps. Defaults to 10ms.
	Interval time.Duration

	// Increment is the step size in percentage points. Defaults to 1. Its
	// sign is irrelevant: the direction of the fade is always derived from
	// the start and finish levels.
	Increment int

	// Force bypasses the platform lower brightness clamp.
	Force bool

	// Logarithmic follows a logarithmic brightness curve instead of linear
	// steps. Useful because equal linear steps are barely perceptible at
	// the top of the range.
	Logarithmic bool
}

// FadeHandle tracks a background fade. The underlying goroutine is never
// joined automatically and does not block process shutdown; callers wanting
// a completion guarantee must Wait explicitly.
type FadeHandle struct {
	done     chan struct{}
	mu       sync.Mutex
	readings []Reading
	err      error
}

// Done returns a channel closed when the fade has settled.
func (h *FadeHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the fade has settled and returns the final brightness
// readings of the faded displays.
func (h *FadeHandle) Wait() ([]Reading, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readings, h.err
}

func (h *FadeHandle) finish(readings []Reading, err error) {
	h.mu.Lock()
	h.readings = readings
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// FadeBrightness gradually changes the brightness of the selected displays
// to finish, blocking until every display has settled. It returns the final
// brightness of each faded display.
//
// Cancelling ctx stops the fade between steps, leaving brightness at the
// last written level; context.Background() reproduces a run-to-completion
// fade.
func (c *Controller) FadeBrightness(ctx context.Context, finish Value, opts FadeOpts) ([]Reading, error) {
	handle, err := c.StartFade(ctx, finish, opts)
	if err != nil {
		return nil, err
	}
	return handle.Wait()
}

// StartFade begins a fade on an independent background goroutine and
// returns immediately. Display resolution still happens synchronously so
// that identifier errors surface to the caller.
func (c *Controller) StartFade(ctx context.Context, finish Value, opts FadeOpts) (*FadeHandle, error) {
	records, err := c.Resolve(opts.Display, c.methodFilter(opts.Method))
	if err != nil {
		return nil, err
	}

	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Millisecond
	}
	if opts.Increment == 0 {
		opts.Increment = 1
	}

	handle := &FadeHandle{done: make(chan struct{})}
	go func() {
		var wg sync.WaitGroup
		readings := make([]Reading, len(records))
		for i, rec := range records {
			wg.Add(1)
			go func(i int, rec DisplayInfo) {
				defer wg.Done()
				readings[i] = c.fadeOne(ctx, rec, finish, opts)
			}(i, rec)
		}
		wg.Wait()
		handle.finish(readings, c.checkAggregate("fade brightness", readings))
	}()
	return handle, nil
}

// fadeOne drives the step sequence for a single display. Each display fades
// from its own start level; after the sequence it performs one final
// authoritative set to the finish level (the increment rarely divides the
// distance evenly) and one final read.
func (c *Controller) fadeOne(ctx context.Context, rec DisplayInfo, finish Value, opts FadeOpts) Reading {
	lower := 0
	if !opts.Force {
		lower = c.lowerBound
	}

	current, err := readBrightness(rec)
	if err != nil {
		return Reading{Display: rec, Err: &GetError{Display: rec.Label(), Err: err}}
	}

	target := clampPercent(finish.Resolve(current), lower)
	start := current
	if opts.Start != nil {
		start = clampPercent(opts.Start.Resolve(current), lower)
	}

	if start != target {
		steps := fadeSteps(start, target, opts.Increment, opts.Logarithmic)
		c.logger.Debug().Str("display", rec.Label()).
			Int("start", start).Int("finish", target).Int("steps", len(steps)).
			Msg("fading")

		// Pace against the intended schedule rather than sleeping a fixed
		// interval after each (possibly slow) backend call.
		next := time.Now()
		for _, v := range steps {
			if err := rec.Method.SetBrightness(v, rec.MethodIndex); err != nil {
				return Reading{Display: rec, Err: &SetError{Display: rec.Label(), Err: err}}
			}
			next = next.Add(opts.Interval)
			if wait := time.Until(next); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return Reading{Display: rec, Err: ctx.Err()}
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return Reading{Display: rec, Err: ctx.Err()}
			}
		}
	}

	if err := rec.Method.SetBrightness(target, rec.MethodIndex); err != nil {
		return Reading{Display: rec, Err: &SetError{Display: rec.Label(), Err: err}}
	}

	settled, err := readBrightness(rec)
	if err != nil {
		return Reading{Display: rec, Err: &GetError{Display: rec.Label(), Err: err}}
	}
	return Reading{Display: rec, Percent: settled}
}

// fadeSteps builds the intermediate brightness sequence from start toward
// finish, excluding finish itself. The step direction always follows
// sign(finish - start).
func fadeSteps(start, finish, increment int, logarithmic bool) []int {
	if increment < 0 {
		increment = -increment
	}
	if increment == 0 {
		increment = 1
	}
	if logarithmic {
		return logarithmicSteps(start, finish, increment)
	}

	var steps []int
	if start < finish {
		for v := start; v < finish; v += increment {
			steps = append(steps, v)
		}
	} else {
		for v := start; v > finish; v -= increment {
			steps = append(steps, v)
		}
	}
	return steps
}

// logarithmicSteps yields a sequence following the curve y = 10^(x/50) from
// start toward finish, excluding finish. It skips many of the higher
// percentages where single-point changes are hard to notice. Inputs are
// treated as percentages and never leave [0, 100].
func logarithmicSteps(start, finish, increment int) []int {
	step := increment
	if start > finish {
		step = -step
	}

	lo := start
	if lo < 0 {
		lo = 0
	}
	hi := finish
	if hi > 100 {
		hi = 100
	}

	diff := hi - lo
	if diff < 0 {
		diff = -diff
	}
	if diff <= 1 {
		return []int{lo}
	}

	valueRange := float64(hi - lo)
	direction := func(x float64) float64 {
		if step > 0 {
			return x
		}
		return 100 - x
	}

	var steps []int
	last := -1
	for x := lo; (step > 0 && x <= hi) || (step < 0 && x >= hi); x += step {
		// progress through the range as a percentage
		p := float64(x-lo) / valueRange * 100
		// project along the inverse of y = 50*log10(x)
		y := math.Pow(10, direction(p)/50)
		v := int(direction(y)/100*valueRange) + lo

		if v == last || v == finish {
			continue
		}
		steps = append(steps, v)
		last = v
	}
	return steps
}
