// Package platform probes the running system for usable brightness
// mechanisms and assembles the default method registry. Which methods exist
// is purely an environment question, so the probing lives outside the core
// dispatch layer.
package platform

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/brightctl/bright"
	"github.com/brightctl/bright/internal/backend/asdhid"
	"github.com/brightctl/bright/internal/backend/ddcutil"
	"github.com/brightctl/bright/internal/backend/light"
	"github.com/brightctl/bright/internal/backend/sysfs"
	"github.com/brightctl/bright/internal/backend/xrandr"
)

// Methods probes every known backend and registers the available ones, in
// priority order: sysfs first (native, no subprocess), then ddcutil, xrandr,
// light, and USB HID displays last. Order matters: when two methods report
// the same physical display, the earlier one wins deduplication.
func Methods(logger zerolog.Logger) *bright.MethodSet {
	set := bright.NewMethodSet()

	skip := func(name string, err error) {
		event := logger.Debug()
		if !errors.Is(err, bright.ErrBackendUnavailable) {
			event = logger.Warn()
		}
		event.Str("method", name).Err(err).Msg("brightness method not registered")
	}

	if b, err := sysfs.New(sysfs.WithLogger(logger)); err != nil {
		skip("sysfs", err)
	} else {
		set.Register(b)
	}

	if b, err := ddcutil.New(ddcutil.WithLogger(logger)); err != nil {
		skip("ddcutil", err)
	} else {
		set.Register(b)
	}

	if b, err := xrandr.New(xrandr.WithLogger(logger)); err != nil {
		skip("xrandr", err)
	} else {
		set.Register(b)
	}

	if b, err := light.New(); err != nil {
		skip("light", err)
	} else {
		set.Register(b)
	}

	if b, err := asdhid.New(); err != nil {
		skip("asdhid", err)
	} else {
		set.Register(b)
	}

	return set
}
