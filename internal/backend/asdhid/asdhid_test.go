package asdhid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightctl/bright"
)

// fakeDevice is an in-memory HID handle holding a nits value.
type fakeDevice struct {
	nits   uint32
	getErr error
	sendErr error
	closed bool
}

func (d *fakeDevice) GetFeatureReport(data []byte) (int, error) {
	if d.getErr != nil {
		return 0, d.getErr
	}
	binary.LittleEndian.PutUint32(data[1:5], d.nits)
	return len(data), nil
}

func (d *fakeDevice) SendFeatureReport(data []byte) (int, error) {
	if d.sendErr != nil {
		return 0, d.sendErr
	}
	d.nits = binary.LittleEndian.Uint32(data[1:5])
	return len(data), nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func newTestBackend(t *testing.T, devices map[string]*fakeDevice) *Backend {
	t.Helper()

	infos := make([]DeviceInfo, 0, len(devices))
	for path := range devices {
		infos = append(infos, DeviceInfo{
			Path:      path,
			VendorID:  appleVendorID,
			ProductID: studioDisplayProductID,
			Serial:    path,
			Product:   "Studio Display",
			Interface: brightnessInterface,
		})
	}

	b, err := New(
		WithEnumerator(func() ([]DeviceInfo, error) { return infos, nil }),
		WithOpener(func(path string) (Device, error) {
			dev, ok := devices[path]
			if !ok {
				return nil, fmt.Errorf("no device at %s", path)
			}
			return dev, nil
		}),
	)
	require.NoError(t, err)
	return b
}

func TestNewUnavailable(t *testing.T) {
	_, err := New(WithEnumerator(func() ([]DeviceInfo, error) { return nil, nil }))
	assert.ErrorIs(t, err, bright.ErrBackendUnavailable)

	_, err = New(WithEnumerator(func() ([]DeviceInfo, error) {
		return nil, errors.New("hidapi init failed")
	}))
	assert.ErrorIs(t, err, bright.ErrBackendUnavailable)
}

func TestGetBrightness(t *testing.T) {
	tests := []struct {
		name string
		nits uint32
		want int
	}{
		{name: "minimum", nits: 400, want: 0},
		{name: "maximum", nits: 60000, want: 100},
		{name: "midpoint", nits: 30200, want: 50},
		{name: "below range clamps", nits: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{nits: tt.nits}
			b := newTestBackend(t, map[string]*fakeDevice{"dev0": dev})

			values, err := b.GetBrightness(0)
			require.NoError(t, err)
			assert.Equal(t, []int{tt.want}, values)
			assert.True(t, dev.closed, "device handle released after use")
		})
	}
}

func TestSetBrightnessRoundTrip(t *testing.T) {
	dev := &fakeDevice{nits: 400}
	b := newTestBackend(t, map[string]*fakeDevice{"dev0": dev})

	for _, percent := range []int{0, 25, 50, 75, 100} {
		require.NoError(t, b.SetBrightness(percent, 0))

		values, err := b.GetBrightness(0)
		require.NoError(t, err)
		assert.Equal(t, []int{percent}, values)
	}
}

func TestSetBrightnessClampsInput(t *testing.T) {
	dev := &fakeDevice{}
	b := newTestBackend(t, map[string]*fakeDevice{"dev0": dev})

	require.NoError(t, b.SetBrightness(150, 0))
	assert.Equal(t, maxNits, dev.nits)

	require.NoError(t, b.SetBrightness(-5, 0))
	assert.Equal(t, minNits, dev.nits)
}

func TestGetDisplayInfoSortedBySerial(t *testing.T) {
	b := newTestBackend(t, map[string]*fakeDevice{
		"serial-b": {nits: 400},
		"serial-a": {nits: 400},
	})

	infos, err := b.GetDisplayInfo()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "serial-a", infos[0].Serial)
	assert.Equal(t, "serial-b", infos[1].Serial)
	assert.Equal(t, "Apple Studio Display", infos[0].Name)
	assert.Equal(t, "APP", infos[0].ManufacturerID)
	assert.Equal(t, "asdhid", b.Name())
}

func TestAllDisplays(t *testing.T) {
	b := newTestBackend(t, map[string]*fakeDevice{
		"serial-a": {nits: 400},
		"serial-b": {nits: 60000},
	})

	values, err := b.GetBrightness(bright.AllDisplays)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 100}, values)

	require.NoError(t, b.SetBrightness(50, bright.AllDisplays))
	values, err = b.GetBrightness(bright.AllDisplays)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 50}, values)
}

func TestReportErrorsSurface(t *testing.T) {
	dev := &fakeDevice{getErr: errors.New("io error")}
	b := newTestBackend(t, map[string]*fakeDevice{"dev0": dev})

	_, err := b.GetBrightness(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get feature report")
}
