// Package sysfs adjusts brightness through the /sys/class/backlight
// interface, which covers most laptop panels and needs no third party
// software.
//
// Reads go straight through the sysfs files. Writes prefer the logind
// Session.SetBrightness D-Bus call, which works for unprivileged users; when
// no system bus is available they fall back to writing the sysfs file
// directly (requiring write permission on it).
package sysfs

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/brightctl/bright"
	"github.com/brightctl/bright/internal/edid"
)

const methodName = "sysfs"

// Backend implements bright.Method over /sys/class/backlight.
type Backend struct {
	base    string
	conn    *dbus.Conn
	logger  zerolog.Logger
	useDBus bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithBasePath overrides the backlight class directory, for tests.
func WithBasePath(base string) Option {
	return func(b *Backend) {
		b.base = base
	}
}

// WithLogger sets the backend logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// New probes the backlight class directory and returns a Backend. If the
// directory does not exist or contains no usable devices the error wraps
// bright.ErrBackendUnavailable.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		base:   "/sys/class/backlight",
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	devices, err := b.scan()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no backlight devices under %s", bright.ErrBackendUnavailable, b.base)
	}

	// Session bus writes need no setup; the logind call rides the system
	// bus and is optional.
	if conn, err := dbus.ConnectSystemBus(); err == nil {
		b.conn = conn
		b.useDBus = true
	} else {
		b.logger.Debug().Err(err).Msg("system bus unavailable, falling back to direct sysfs writes")
	}

	return b, nil
}

// device is one scanned backlight directory.
type device struct {
	name string
	path string
	max  int
}

// scan lists the backlight devices in stable (sorted) order so that indices
// stay dense and reproducible within an enumeration pass.
func (b *Backend) scan() ([]device, error) {
	entries, err := os.ReadDir(b.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s missing", bright.ErrBackendUnavailable, b.base)
		}
		return nil, fmt.Errorf("read %s: %w", b.base, err)
	}

	var devices []device
	for _, entry := range entries {
		path := filepath.Join(b.base, entry.Name())

		max, err := readIntFile(filepath.Join(path, "max_brightness"))
		if err != nil || max <= 0 {
			b.logger.Debug().Str("device", entry.Name()).Msg("skipping device without valid max_brightness")
			continue
		}

		devices = append(devices, device{name: entry.Name(), path: path, max: max})
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].name < devices[j].name })
	return devices, nil
}

// Name implements bright.Method.
func (b *Backend) Name() string { return methodName }

// GetDisplayInfo implements bright.Method. Identity fields come from the
// device's EDID node when the kernel exposes one; otherwise the sysfs
// directory name doubles as name and serial.
func (b *Backend) GetDisplayInfo() ([]bright.DisplayInfo, error) {
	devices, err := b.scan()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no backlight devices under %s", bright.ErrBackendUnavailable, b.base)
	}

	infos := make([]bright.DisplayInfo, 0, len(devices))
	for i, dev := range devices {
		info := bright.DisplayInfo{
			Name:        dev.name,
			Serial:      dev.name,
			MethodIndex: i,
		}

		edidPath := filepath.Join(dev.path, "device", "edid")
		if raw, err := edid.Hexdump(edidPath); err == nil && raw != "" {
			info.EDID = raw
			if id, err := edid.ParseHex(raw); err == nil {
				applyIdentity(&info, id)
			} else {
				b.logger.Debug().Str("device", dev.name).Err(err).Msg("unparseable edid")
			}
		}

		infos = append(infos, info)
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
		raw, err := readIntFile(filepath.Join(dev.path, "brightness"))
		if err != nil {
			return nil, fmt.Errorf("read brightness of %s: %w", dev.name, err)
		}
		values = append(values, int(math.Round(float64(raw)/float64(dev.max)*100)))
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
		raw := int(math.Round(float64(value) / 100 * float64(dev.max)))
		if err := b.write(dev, raw); err != nil {
			return fmt.Errorf("set brightness of %s: %w", dev.name, err)
		}
	}
	return nil
}

// write stores a raw brightness value, preferring the logind D-Bus call.
func (b *Backend) write(dev device, raw int) error {
	if b.useDBus && b.conn != nil {
		obj := b.conn.Object("org.freedesktop.login1", "/org/freedesktop/login1/session/auto")
		call := obj.Call("org.freedesktop.login1.Session.SetBrightness", 0, "backlight", dev.name, uint32(raw))
		if call.Err == nil {
			return nil
		}
		b.logger.Debug().Err(call.Err).Str("device", dev.name).Msg("logind SetBrightness failed, writing sysfs file")
	}
	return os.WriteFile(filepath.Join(dev.path, "brightness"), []byte(strconv.Itoa(raw)), 0o644)
}

func (b *Backend) selectDevices(display int) ([]device, error) {
	devices, err := b.scan()
	if err != nil {
		return nil, err
	}
	if display == bright.AllDisplays {
		return devices, nil
	}
	if display < 0 || display >= len(devices) {
		return nil, fmt.Errorf("display index %d out of range (%d backlight devices)", display, len(devices))
	}
	return devices[display : display+1], nil
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

func readIntFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(raw)))
}
