// Package hotplug watches netlink/udev events for display topology changes
// (backlight devices appearing, DRM connectors changing, USB displays coming
// and going) so that long-running consumers can drop stale enumeration
// snapshots.
package hotplug

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"syscall"

	"github.com/pilebones/go-udev/netlink"
	"github.com/rs/zerolog/log"
)

// netlinkBufferSize is the receive buffer size for the netlink socket. Rapid
// hot-plug bursts generate many uevents; a large buffer avoids ENOBUFS.
const netlinkBufferSize = 2 * 1024 * 1024

// EventType is the kind of topology change observed.
type EventType int

const (
	// EventAdd indicates a display device appeared.
	EventAdd EventType = iota
	// EventRemove indicates a display device disappeared.
	EventRemove
	// EventChange indicates a display device changed state.
	EventChange
)

func (t EventType) String() string {
	switch t {
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	case EventChange:
		return "change"
	default:
		return "unknown"
	}
}

// Event is one topology change.
type Event struct {
	Type      EventType
	Subsystem string
}

// Handler receives topology change events.
type Handler func(Event)

// RecoveryHandler is invoked after the monitor recovers from a condition
// where events may have been dropped (netlink buffer overflow); consumers
// should treat it as an unconditional topology change.
type RecoveryHandler func()

// Monitor watches for display-related uevents.
type Monitor struct {
	conn            *netlink.UEventConn
	handler         Handler
	recoveryHandler RecoveryHandler
	quit            chan struct{}
	stopped         bool
	mu              sync.Mutex
}

// NewMonitor creates a monitor delivering events to handler.
func NewMonitor(handler Handler) *Monitor {
	return &Monitor{handler: handler}
}

// SetRecoveryHandler sets the handler called after a detected event loss.
func (m *Monitor) SetRecoveryHandler(handler RecoveryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recoveryHandler = handler
}

// Start begins monitoring. Non-blocking; events are delivered from a
// background goroutine.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return fmt.Errorf("monitor already started")
	}

	m.conn = &netlink.UEventConn{}
	if err := m.conn.Connect(netlink.UdevEvent); err != nil {
		m.conn = nil
		return fmt.Errorf("connect to netlink: %w", err)
	}

	if err := setSocketBufferSize(m.conn.Fd, netlinkBufferSize); err != nil {
		log.Warn().Err(err).Int("size", netlinkBufferSize).Msg("failed to set netlink buffer size")
	}

	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.quit = m.conn.Monitor(queue, errs, m.createMatcher())
	m.stopped = false

	go m.processEvents(queue, errs)

	log.Debug().Msg("hotplug monitor started")
	return nil
}

// Stop stops the monitor and releases resources.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.stopped {
		return nil
	}
	m.stopped = true

	select {
	case m.quit <- struct{}{}:
	default:
	}

	if err := m.conn.Close(); err != nil {
		return fmt.Errorf("close netlink connection: %w", err)
	}
	m.conn = nil
	return nil
}

// createMatcher builds rules for the subsystems that carry display topology
// information: backlight (panel devices), drm (connector changes) and usb
// (external HID displays).
func (m *Monitor) createMatcher() *netlink.RuleDefinitions {
	rules := &netlink.RuleDefinitions{}
	for _, action := range []string{"add", "remove", "change"} {
		action := action
		rules.AddRule(netlink.RuleDefinition{
			Action: &action,
			Env:    map[string]string{"SUBSYSTEM": "^(backlight|drm|usb)$"},
		})
	}
	return rules
}

func (m *Monitor) processEvents(queue chan netlink.UEvent, errs chan error) {
	for {
		select {
		case uevent, ok := <-queue:
			if !ok {
				return
			}
			m.handleEvent(uevent)
		case err, ok := <-errs:
			if !ok {
				return
			}

			m.mu.Lock()
			stopped := m.stopped
			recovery := m.recoveryHandler
			m.mu.Unlock()
			if stopped {
				return
			}

			if isBufferOverflowError(err) {
				log.Warn().Msg("netlink buffer overflow, events may have been dropped")
				if recovery != nil {
					go recovery()
				}
				continue
			}
			log.Error().Err(err).Msg("hotplug monitor error")
		}
	}
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	var eventType EventType
	switch uevent.Action {
	case netlink.ADD:
		eventType = EventAdd
	case netlink.REMOVE:
		eventType = EventRemove
	case netlink.CHANGE:
		eventType = EventChange
	default:
		return
	}

	subsystem := uevent.Env["SUBSYSTEM"]
	log.Debug().
		Str("action", string(uevent.Action)).
		Str("subsystem", subsystem).
		Str("devpath", uevent.KObj).
		Msg("display topology event")

	if m.handler != nil {
		m.handler(Event{Type: eventType, Subsystem: subsystem})
	}
}

// setSocketBufferSize grows the socket receive buffer, preferring
// SO_RCVBUFFORCE (needs CAP_NET_ADMIN) and falling back to SO_RCVBUF.
func setSocketBufferSize(fd int, size int) error {
	if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_RCVBUFFORCE, size); err == nil {
		return nil
	}
	return syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_RCVBUF, size)
}

func isBufferOverflowError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ENOBUFS) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no buffer space available")
}
