package light

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightctl/bright"
)

const listOutput = `Listing device targets:
  sysfs/backlight/auto
  sysfs/backlight/intel_backlight
  sysfs/backlight/nvidia_0
  sysfs/leds/input3::capslock
  util/test/dryrun
`

func newTestBackend(t *testing.T, respond func(args []string) (string, error)) *Backend {
	t.Helper()
	b, err := New(WithRunner(func(ctx context.Context, args ...string) ([]byte, error) {
		out, err := respond(args)
		return []byte(out), err
	}))
	require.NoError(t, err)
	return b
}

func TestGetDisplayInfo(t *testing.T) {
	b := newTestBackend(t, func(args []string) (string, error) {
		return listOutput, nil
	})

	infos, err := b.GetDisplayInfo()
	require.NoError(t, err)
	require.Len(t, infos, 3, "led and util targets are not backlights")

	assert.Equal(t, "auto", infos[0].Name)
	assert.Equal(t, "intel_backlight", infos[1].Name)
	assert.Equal(t, 1, infos[1].MethodIndex)
	assert.Equal(t, "light", b.Name())
}

func TestGetDisplayInfoNoControllers(t *testing.T) {
	b := newTestBackend(t, func(args []string) (string, error) {
		return "Listing device targets:\n  sysfs/leds/input3::capslock\n", nil
	})

	_, err := b.GetDisplayInfo()
	assert.ErrorIs(t, err, bright.ErrBackendUnavailable)
}

func TestGetBrightness(t *testing.T) {
	b := newTestBackend(t, func(args []string) (string, error) {
		if args[0] == "-L" {
			return listOutput, nil
		}
		require.Equal(t, []string{"-G", "-s", "sysfs/backlight/intel_backlight"}, args)
		return "73.85\n", nil
	})

	values, err := b.GetBrightness(1)
	require.NoError(t, err)
	assert.Equal(t, []int{74}, values)
}

func TestGetBrightnessUnparseable(t *testing.T) {
	b := newTestBackend(t, func(args []string) (string, error) {
		if args[0] == "-L" {
			return listOutput, nil
		}
		return "not a number", nil
	})

	_, err := b.GetBrightness(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected output")
}

func TestSetBrightness(t *testing.T) {
	var setCalls [][]string
	b := newTestBackend(t, func(args []string) (string, error) {
		if args[0] == "-L" {
			return listOutput, nil
		}
		setCalls = append(setCalls, args)
		return "", nil
	})

	require.NoError(t, b.SetBrightness(40, 2))
	require.Len(t, setCalls, 1)
	assert.Equal(t, []string{"-S", "40", "-s", "sysfs/backlight/nvidia_0"}, setCalls[0])

	setCalls = nil
	require.NoError(t, b.SetBrightness(10, bright.AllDisplays))
	assert.Len(t, setCalls, 3)
}

func TestSetBrightnessError(t *testing.T) {
	b := newTestBackend(t, func(args []string) (string, error) {
		if args[0] == "-L" {
			return listOutput, nil
		}
		return "", errors.New("permission denied")
	})

	err := b.SetBrightness(40, 0)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "light -S"))
}
