package asdhid

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/brightctl/bright"
)

const methodName = "asdhid"

const (
	// reportID is the HID report ID for brightness control.
	reportID byte = 0x01

	// reportSize is the size of the brightness feature report in bytes.
	reportSize = 7

	// appleVendorID is the USB vendor ID for Apple.
	appleVendorID uint16 = 0x05ac

	// studioDisplayProductID is the USB product ID for the Apple Studio
	// Display.
	studioDisplayProductID uint16 = 0x1114

	// brightnessInterface is the USB interface number carrying the
	// brightness control.
	brightnessInterface = 0x07
)

const (
	// minNits and maxNits bound the panel's backlight range.
	minNits uint32 = 400
	maxNits uint32 = 60000
)

// Enumerator lists candidate HID devices. Swappable for tests.
type Enumerator func() ([]DeviceInfo, error)

// Opener opens the HID device at the given path. Swappable for tests.
type Opener func(path string) (Device, error)

// Backend implements bright.Method for Apple Studio Displays.
type Backend struct {
	enumerate Enumerator
	open      Opener
}

// Option configures a Backend.
type Option func(*Backend)

// WithEnumerator substitutes the device enumerator, for tests.
func WithEnumerator(fn Enumerator) Option {
	return func(b *Backend) {
		b.enumerate = fn
	}
}

// WithOpener substitutes the device opener, for tests.
func WithOpener(fn Opener) Option {
	return func(b *Backend) {
		b.open = fn
	}
}

// New returns an Apple Studio Display Backend. If HID support is missing or
// no display is connected the error wraps bright.ErrBackendUnavailable.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		enumerate: enumerateDisplays,
		open:      openDevice,
	}
	for _, opt := range opts {
		opt(b)
	}

	devices, err := b.enumerate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bright.ErrBackendUnavailable, err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no Apple Studio Display found", bright.ErrBackendUnavailable)
	}
	return b, nil
}

// Name implements bright.Method.
func (b *Backend) Name() string { return methodName }

// GetDisplayInfo implements bright.Method. Devices are ordered by serial so
// indices stay stable within an enumeration pass.
func (b *Backend) GetDisplayInfo() ([]bright.DisplayInfo, error) {
	devices, err := b.devices()
	if err != nil {
		return nil, err
	}

	infos := make([]bright.DisplayInfo, len(devices))
	for i, d := range devices {
		product := d.Product
		if product == "" {
			product = "Apple Studio Display"
		}
		infos[i] = bright.DisplayInfo{
			Name:           "Apple " + product,
			Model:          product,
			Manufacturer:   "Apple Computer",
			ManufacturerID: "APP",
			Serial:         d.Serial,
			MethodIndex:    i,
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
	for _, info := range devices {
		percent, err := b.readDevice(info)
		if err != nil {
			return nil, err
		}
		values = append(values, percent)
	}
	return values, nil
}

// SetBrightness implements bright.Method.
func (b *Backend) SetBrightness(value int, display int) error {
	devices, err := b.selectDevices(display)
	if err != nil {
		return err
	}

	for _, info := range devices {
		if err := b.writeDevice(info, value); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) readDevice(info DeviceInfo) (int, error) {
	dev, err := b.open(info.Path)
	if err != nil {
		return 0, fmt.Errorf("open display %s: %w", info.Serial, err)
	}
	defer dev.Close()

	data := make([]byte, reportSize)
	data[0] = reportID
	if _, err := dev.GetFeatureReport(data); err != nil {
		return 0, fmt.Errorf("get feature report from %s: %w", info.Serial, err)
	}

	nits := binary.LittleEndian.Uint32(data[1:5])
	return nitsToPercent(nits), nil
}

func (b *Backend) writeDevice(info DeviceInfo, percent int) error {
	dev, err := b.open(info.Path)
	if err != nil {
		return fmt.Errorf("open display %s: %w", info.Serial, err)
	}
	defer dev.Close()

	data := make([]byte, reportSize)
	data[0] = reportID
	binary.LittleEndian.PutUint32(data[1:5], percentToNits(percent))
	if _, err := dev.SendFeatureReport(data); err != nil {
		return fmt.Errorf("send feature report to %s: %w", info.Serial, err)
	}
	return nil
}

func (b *Backend) devices() ([]DeviceInfo, error) {
	devices, err := b.enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate HID devices: %w", err)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Serial < devices[j].Serial })
	return devices, nil
}

func (b *Backend) selectDevices(display int) ([]DeviceInfo, error) {
	devices, err := b.devices()
	if err != nil {
		return nil, err
	}
	if display == bright.AllDisplays {
		return devices, nil
	}
	if display < 0 || display >= len(devices) {
		return nil, fmt.Errorf("display index %d out of range (%d HID displays)", display, len(devices))
	}
	return devices[display : display+1], nil
}

// nitsToPercent converts a backlight level in nits to a percentage, clamping
// out-of-range values. Rounding keeps round trips with percentToNits stable.
func nitsToPercent(nits uint32) int {
	nits = clampNits(nits)
	return int(math.Round(float64(nits-minNits) / float64(maxNits-minNits) * 100))
}

// percentToNits converts a percentage to a backlight level in nits.
func percentToNits(percent int) uint32 {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	nits := uint32(float64(percent)*float64(maxNits-minNits)/100) + minNits
	return clampNits(nits)
}

func clampNits(nits uint32) uint32 {
	if nits < minNits {
		return minNits
	}
	if nits > maxNits {
		return maxNits
	}
	return nits
}
