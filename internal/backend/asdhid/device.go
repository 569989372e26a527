// Package asdhid adjusts Apple Studio Display brightness over USB HID
// feature reports. The display exposes its backlight on a dedicated HID
// interface; brightness travels as a little-endian nits value.
package asdhid

// DeviceInfo describes a HID device exposing the brightness interface.
type DeviceInfo struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Serial       string
	Manufacturer string
	Product      string
	Interface    int
}

// Device is the minimal HID handle the backend needs. The indirection keeps
// hardware out of the tests.
type Device interface {
	// GetFeatureReport reads a feature report; the first byte of data is
	// the report ID.
	GetFeatureReport(data []byte) (int, error)

	// SendFeatureReport writes a feature report; the first byte of data is
	// the report ID.
	SendFeatureReport(data []byte) (int, error)

	// Close releases the device handle.
	Close() error
}
