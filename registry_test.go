package bright_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightctl/bright"
)

func TestSnapshotDeduplicates(t *testing.T) {
	// two methods report the same physical panel: sysfs knows its EDID and
	// serial, ddcutil knows serial only
	sysfs := newFakeMethod("sysfs",
		display("Laptop Panel", "PANEL-1", "00ffpanel", 40),
	)
	ddc := newFakeMethod("ddcutil",
		display("Laptop Panel", "PANEL-1", "", 40),
		display("BenQ GL2450H", "EXT-1", "00ffbenq", 70),
	)

	ctrl := newController(bright.Config{}, sysfs, ddc)

	records, err := ctrl.Snapshot("", false)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// the first method to report a display wins
	assert.Equal(t, "PANEL-1", records[0].Serial)
	assert.Equal(t, "sysfs", records[0].Method.Name())
	assert.Equal(t, "EXT-1", records[1].Serial)
	assert.Equal(t, "ddcutil", records[1].Method.Name())

	// global indices are dense over the deduplicated snapshot
	assert.Equal(t, 0, records[0].GlobalIndex)
	assert.Equal(t, 1, records[1].GlobalIndex)

	// each record still addresses its owning method locally
	assert.Equal(t, 0, records[0].MethodIndex)
	assert.Equal(t, 1, records[1].MethodIndex)
}

func TestSnapshotAllowDuplicates(t *testing.T) {
	sysfs := newFakeMethod("sysfs", display("Panel", "P1", "", 40))
	light := newFakeMethod("light", display("Panel", "P1", "", 40))

	ctrl := newController(bright.Config{}, sysfs, light)

	records, err := ctrl.Snapshot("", true)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSnapshotSameMethodNeverDeduplicated(t *testing.T) {
	// two identical units reported by one method stay distinct records
	ddc := newFakeMethod("ddcutil",
		display("Dell U2419H", "", "", 50),
		display("Dell U2419H", "", "", 60),
	)

	ctrl := newController(bright.Config{}, ddc)

	records, err := ctrl.Snapshot("", false)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSnapshotMethodFailureIsolated(t *testing.T) {
	broken := newFakeMethod("ddcutil")
	broken.enumErr = errors.New("i2c timeout")
	working := newFakeMethod("sysfs", display("Panel", "P1", "", 40))

	ctrl := newController(bright.Config{}, broken, working)

	records, err := ctrl.Snapshot("", false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P1", records[0].Serial)
}

func TestSnapshotAllMethodsFailed(t *testing.T) {
	a := newFakeMethod("sysfs")
	a.enumErr = errors.New("no devices")
	b := newFakeMethod("ddcutil")
	b.enumErr = errors.New("no bus")

	ctrl := newController(bright.Config{}, a, b)

	_, err := ctrl.Snapshot("", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, bright.ErrNoDisplaysDetected)
	assert.Contains(t, err.Error(), "all 2 methods failed")
}

func TestSnapshotErrorKeepsVerbatimMethodName(t *testing.T) {
	m := newFakeMethod("vcp%d")
	m.enumErr = errors.New("no devices")

	ctrl := newController(bright.Config{}, m)

	_, err := ctrl.Snapshot("vcp%d", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `with method "vcp%d"`)
	assert.NotContains(t, err.Error(), "%!")
}

func TestSnapshotEmptyWithoutFailures(t *testing.T) {
	empty := newFakeMethod("sysfs")

	ctrl := newController(bright.Config{}, empty)

	_, err := ctrl.Snapshot("", false)
	assert.ErrorIs(t, err, bright.ErrNoDisplaysDetected)
	assert.NotContains(t, err.Error(), "failed")
}

func TestSnapshotMethodFilter(t *testing.T) {
	sysfs := newFakeMethod("sysfs", display("Panel", "P1", "", 40))
	ddc := newFakeMethod("ddcutil", display("External", "E1", "", 70))

	ctrl := newController(bright.Config{}, sysfs, ddc)

	records, err := ctrl.Snapshot("ddcutil", false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "E1", records[0].Serial)

	// lookup is case-insensitive
	records, err = ctrl.Snapshot("DDCUtil", false)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = ctrl.Snapshot("wmi", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid method "wmi"`)
}

func TestSnapshotEDIDTierDecisive(t *testing.T) {
	// same serial but different EDIDs: the EDID tier decides these are
	// different panels, the serial tier is never consulted
	a := newFakeMethod("sysfs", display("Panel", "SHARED", "00ffaa", 40))
	b := newFakeMethod("ddcutil", display("Panel", "SHARED", "00ffbb", 70))

	ctrl := newController(bright.Config{}, a, b)

	records, err := ctrl.Snapshot("", false)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
