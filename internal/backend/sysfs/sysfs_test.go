package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightctl/bright"
)

func writeDevice(t *testing.T, base, name string, brightness, max int) string {
	t.Helper()
	dir := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte(strconv.Itoa(brightness)+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(strconv.Itoa(max)+"\n"), 0o644))
	return dir
}

func newTestBackend(t *testing.T, base string) *Backend {
	t.Helper()
	b, err := New(WithBasePath(base))
	require.NoError(t, err)
	// force direct file writes regardless of the host's bus state
	b.useDBus = false
	return b
}

func TestNewUnavailable(t *testing.T) {
	_, err := New(WithBasePath(filepath.Join(t.TempDir(), "missing")))
	assert.ErrorIs(t, err, bright.ErrBackendUnavailable)

	// an existing but empty class directory is just as unavailable
	_, err = New(WithBasePath(t.TempDir()))
	assert.ErrorIs(t, err, bright.ErrBackendUnavailable)
}

func TestNewSkipsDevicesWithoutMax(t *testing.T) {
	base := t.TempDir()
	writeDevice(t, base, "intel_backlight", 500, 1000)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "broken"), 0o755))

	b := newTestBackend(t, base)

	infos, err := b.GetDisplayInfo()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "intel_backlight", infos[0].Name)
}

func TestGetBrightnessScalesToPercent(t *testing.T) {
	base := t.TempDir()
	writeDevice(t, base, "intel_backlight", 500, 1000)
	writeDevice(t, base, "nvidia_0", 7, 7)

	b := newTestBackend(t, base)

	// devices enumerate in sorted order
	values, err := b.GetBrightness(bright.AllDisplays)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 100}, values)

	values, err = b.GetBrightness(1)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, values)
}

func TestSetBrightnessWritesRawValue(t *testing.T) {
	base := t.TempDir()
	dir := writeDevice(t, base, "intel_backlight", 500, 1000)

	b := newTestBackend(t, base)

	require.NoError(t, b.SetBrightness(75, 0))

	raw, err := os.ReadFile(filepath.Join(dir, "brightness"))
	require.NoError(t, err)
	assert.Equal(t, "750", string(raw))

	values, err := b.GetBrightness(0)
	require.NoError(t, err)
	assert.Equal(t, []int{75}, values)
}

func TestGetBrightnessOutOfRange(t *testing.T) {
	base := t.TempDir()
	writeDevice(t, base, "intel_backlight", 500, 1000)

	b := newTestBackend(t, base)

	_, err := b.GetBrightness(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestGetDisplayInfoReadsEDID(t *testing.T) {
	base := t.TempDir()
	dir := writeDevice(t, base, "intel_backlight", 500, 1000)

	// minimal valid EDID under device/edid, the way drm connectors expose it
	raw := make([]byte, 128)
	copy(raw, []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00})
	raw[8], raw[9] = 0x10, 0xac // "DEL"
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "device"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "device", "edid"), raw, 0o644))

	b := newTestBackend(t, base)

	infos, err := b.GetDisplayInfo()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.NotEmpty(t, infos[0].EDID)
	assert.Equal(t, "DEL", infos[0].ManufacturerID)
	assert.Equal(t, "Dell", infos[0].Manufacturer)
	// no name descriptor: the sysfs directory name stays authoritative
	assert.Equal(t, "intel_backlight", infos[0].Name)
}
