// SPDX-License-Identifier: GPL-3.0-only

// Package service exposes the unified brightness API as a D-Bus service, so
// desktop components can list displays and adjust brightness without linking
// the library.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/brightctl/bright"
)

// ErrRateLimitExceeded is returned when brightness change requests exceed
// the rate limit.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

const (
	// rateLimitPerSecond caps brightness changes per second; key-repeat on
	// a brightness hotkey stays well under this.
	rateLimitPerSecond = 20

	// rateLimitBurst is the burst budget for brightness changes.
	rateLimitBurst = 5
)

const (
	// ServiceName is the D-Bus service name.
	ServiceName = "io.github.brightctl.Bright"

	// ObjectPath is the D-Bus object path.
	ObjectPath = "/io/github/brightctl/Bright"

	// InterfaceName is the D-Bus interface name.
	InterfaceName = "io.github.brightctl.Bright"
)

// IntrospectXML is the introspection document for the service.
const IntrospectXML = `
<node name="` + ObjectPath + `">
  <interface name="` + InterfaceName + `">
    <method name="ListDisplays">
      <arg name="displays" type="a(issss)" direction="out"/>
    </method>
    <method name="GetBrightness">
      <arg name="display" type="s" direction="in"/>
      <arg name="levels" type="ai" direction="out"/>
    </method>
    <method name="SetBrightness">
      <arg name="display" type="s" direction="in"/>
      <arg name="value" type="s" direction="in"/>
      <arg name="levels" type="ai" direction="out"/>
    </method>
    <method name="FadeBrightness">
      <arg name="display" type="s" direction="in"/>
      <arg name="finish" type="s" direction="in"/>
      <arg name="intervalMs" type="u" direction="in"/>
      <arg name="increment" type="u" direction="in"/>
    </method>
    <signal name="BrightnessChanged">
      <arg name="display" type="s"/>
      <arg name="level" type="i"/>
    </signal>
  </interface>
  ` + introspect.IntrospectDataString + `
</node>
`

// Controller is the slice of the brightness API the service needs. Satisfied
// by *bright.Controller; narrowed to an interface for tests.
type Controller interface {
	ListMonitorsInfo(method string, allowDuplicates bool) ([]bright.DisplayInfo, error)
	GetBrightness(opts bright.GetOpts) ([]bright.Reading, error)
	SetBrightness(value bright.Value, opts bright.SetOpts) ([]bright.Reading, error)
	StartFade(ctx context.Context, finish bright.Value, opts bright.FadeOpts) (*bright.FadeHandle, error)
}

// DisplayEntry is one display as serialized over D-Bus, signature (issss).
type DisplayEntry struct {
	Index  int32
	Name   string
	Serial string
	Model  string
	Method string
}

// Server implements the D-Bus brightness service. Each handler works on a
// fresh registry snapshot via the controller, so the server itself carries
// no display state; the mutex only guards the connection used for signal
// emission.
type Server struct {
	ctrl        Controller
	rateLimiter *rate.Limiter
	connMu      sync.RWMutex
	conn        *dbus.Conn
}

// NewServer creates a D-Bus server over the given controller.
func NewServer(ctrl Controller) *Server {
	return &Server{
		ctrl:        ctrl,
		rateLimiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
	}
}

// Start connects to the session bus and exports the service.
func (s *Server) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}

	success := false
	defer func() {
		if !success {
			if closeErr := conn.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close D-Bus connection during cleanup")
			}
		}
	}()

	if err := conn.Export(s, ObjectPath, InterfaceName); err != nil {
		return fmt.Errorf("export server: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(IntrospectXML), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken", ServiceName)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	success = true
	log.Info().Str("service", ServiceName).Msg("D-Bus service started")
	return nil
}

// Stop disconnects from the session bus.
func (s *Server) Stop() error {
	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// ListDisplays returns all detected displays.
func (s *Server) ListDisplays() ([]DisplayEntry, *dbus.Error) {
	infos, err := s.ctrl.ListMonitorsInfo("", false)
	if err != nil {
		log.Error().Err(err).Msg("failed to list displays")
		return nil, dbus.MakeFailedError(err)
	}

	entries := make([]DisplayEntry, len(infos))
	for i, info := range infos {
		entries[i] = DisplayEntry{
			Index:  int32(info.GlobalIndex),
			Name:   info.Name,
			Serial: info.Serial,
			Model:  info.Model,
			Method: info.Method.Name(),
		}
	}
	log.Debug().Int("count", len(entries)).Msg("listed displays")
	return entries, nil
}

// GetBrightness returns the brightness of the selected displays. An empty
// display string selects all displays; failed displays report -1.
func (s *Server) GetBrightness(display string) ([]int32, *dbus.Error) {
	readings, err := s.ctrl.GetBrightness(bright.GetOpts{Display: bright.ParseIdentifier(display)})
	if err != nil {
		log.Error().Err(err).Str("display", display).Msg("failed to get brightness")
		return nil, dbus.MakeFailedError(err)
	}
	return levels(readings), nil
}

// SetBrightness sets the brightness of the selected displays. The value
// string accepts absolute percentages and relative adjustments ("+10").
func (s *Server) SetBrightness(display, value string) ([]int32, *dbus.Error) {
	if !s.rateLimiter.Allow() {
		log.Warn().Msg("rate limit exceeded for SetBrightness")
		return nil, dbus.MakeFailedError(ErrRateLimitExceeded)
	}

	v, err := bright.ParseValue(value)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}

	readings, err := s.ctrl.SetBrightness(v, bright.SetOpts{Display: bright.ParseIdentifier(display)})
	if err != nil {
		log.Error().Err(err).Str("display", display).Str("value", value).Msg("failed to set brightness")
		return nil, dbus.MakeFailedError(err)
	}

	for _, r := range readings {
		if r.Err == nil {
			s.emitBrightnessChanged(r.Display.Label(), int32(r.Percent))
		}
	}
	return levels(readings), nil
}

// FadeBrightness starts a background fade on the selected displays and
// returns immediately.
func (s *Server) FadeBrightness(display, finish string, intervalMs, increment uint32) *dbus.Error {
	if !s.rateLimiter.Allow() {
		log.Warn().Msg("rate limit exceeded for FadeBrightness")
		return dbus.MakeFailedError(ErrRateLimitExceeded)
	}

	v, err := bright.ParseValue(finish)
	if err != nil {
		return dbus.MakeFailedError(err)
	}

	opts := bright.FadeOpts{
		Display:   bright.ParseIdentifier(display),
		Increment: int(increment),
	}
	if intervalMs > 0 {
		opts.Interval = time.Duration(intervalMs) * time.Millisecond
	}

	handle, err := s.ctrl.StartFade(context.Background(), v, opts)
	if err != nil {
		log.Error().Err(err).Str("display", display).Str("finish", finish).Msg("failed to start fade")
		return dbus.MakeFailedError(err)
	}

	// report the settled levels once the fade completes
	go func() {
		readings, err := handle.Wait()
		if err != nil {
			log.Error().Err(err).Msg("fade failed")
			return
		}
		for _, r := range readings {
			if r.Err == nil {
				s.emitBrightnessChanged(r.Display.Label(), int32(r.Percent))
			}
		}
	}()
	return nil
}

func (s *Server) emitBrightnessChanged(display string, level int32) {
	s.connMu.RLock()
	conn := s.conn
	s.connMu.RUnlock()
	if conn == nil {
		return
	}

	if err := conn.Emit(ObjectPath, InterfaceName+".BrightnessChanged", display, level); err != nil {
		log.Error().Err(err).Msg("failed to emit BrightnessChanged")
	}
}

func levels(readings []bright.Reading) []int32 {
	out := make([]int32, len(readings))
	for i, r := range readings {
		if r.Err != nil {
			out[i] = -1
			continue
		}
		out[i] = int32(r.Percent)
	}
	return out
}
