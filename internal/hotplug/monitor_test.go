// SPDX-License-Identifier: GPL-3.0-only

package hotplug

import (
	"errors"
	"syscall"
	"testing"

	"github.com/pilebones/go-udev/netlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonitor(t *testing.T) {
	called := false
	monitor := NewMonitor(func(Event) { called = true })
	require.NotNil(t, monitor)

	monitor.handler(Event{Type: EventAdd})
	assert.True(t, called)
}

func TestMonitorStopWithoutStart(t *testing.T) {
	monitor := NewMonitor(nil)
	assert.NoError(t, monitor.Stop())
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name          string
		uevent        netlink.UEvent
		expectHandler bool
		expected      Event
	}{
		{
			name: "backlight add",
			uevent: netlink.UEvent{
				Action: netlink.ADD,
				KObj:   "/devices/platform/intel_backlight",
				Env:    map[string]string{"SUBSYSTEM": "backlight"},
			},
			expectHandler: true,
			expected:      Event{Type: EventAdd, Subsystem: "backlight"},
		},
		{
			name: "usb remove",
			uevent: netlink.UEvent{
				Action: netlink.REMOVE,
				KObj:   "/devices/pci0000:00/usb1/1-1",
				Env:    map[string]string{"SUBSYSTEM": "usb"},
			},
			expectHandler: true,
			expected:      Event{Type: EventRemove, Subsystem: "usb"},
		},
		{
			name: "drm connector change",
			uevent: netlink.UEvent{
				Action: netlink.CHANGE,
				KObj:   "/devices/pci0000:00/0000:00:02.0/drm/card0",
				Env:    map[string]string{"SUBSYSTEM": "drm"},
			},
			expectHandler: true,
			expected:      Event{Type: EventChange, Subsystem: "drm"},
		},
		{
			name: "bind action is ignored",
			uevent: netlink.UEvent{
				Action: netlink.BIND,
				Env:    map[string]string{"SUBSYSTEM": "usb"},
			},
			expectHandler: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Event
			monitor := NewMonitor(func(ev Event) { got = &ev })

			monitor.handleEvent(tt.uevent)

			if !tt.expectHandler {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestHandleEventNilHandler(t *testing.T) {
	monitor := NewMonitor(nil)
	assert.NotPanics(t, func() {
		monitor.handleEvent(netlink.UEvent{
			Action: netlink.ADD,
			Env:    map[string]string{"SUBSYSTEM": "backlight"},
		})
	})
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "add", EventAdd.String())
	assert.Equal(t, "remove", EventRemove.String())
	assert.Equal(t, "change", EventChange.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestCreateMatcher(t *testing.T) {
	monitor := NewMonitor(nil)
	rules := monitor.createMatcher()
	require.NotNil(t, rules)
	assert.Len(t, rules.Rules, 3)
}

func TestIsBufferOverflowError(t *testing.T) {
	assert.False(t, isBufferOverflowError(nil))
	assert.False(t, isBufferOverflowError(errors.New("connection reset")))
	assert.True(t, isBufferOverflowError(syscall.ENOBUFS))
	assert.True(t, isBufferOverflowError(errors.New("recvmsg: no buffer space available")))
}
