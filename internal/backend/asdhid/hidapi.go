package asdhid

import (
	"fmt"

	karalabehid "github.com/karalabe/hid"
)

// enumerateDisplays lists the brightness interfaces of all connected Apple
// Studio Displays.
func enumerateDisplays() ([]DeviceInfo, error) {
	devices, err := karalabehid.Enumerate(appleVendorID, studioDisplayProductID)
	if err != nil {
		return nil, fmt.Errorf("enumerate HID devices: %w", err)
	}

	var displays []DeviceInfo
	for _, d := range devices {
		if d.Interface != brightnessInterface {
			continue
		}
		displays = append(displays, DeviceInfo{
			Path:         d.Path,
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Serial:       d.Serial,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
			Interface:    d.Interface,
		})
	}
	return displays, nil
}

// openDevice opens the HID device at the given path.
func openDevice(path string) (Device, error) {
	devices, err := karalabehid.Enumerate(appleVendorID, studioDisplayProductID)
	if err != nil {
		return nil, fmt.Errorf("enumerate HID devices: %w", err)
	}

	for _, d := range devices {
		if d.Path != path {
			continue
		}
		dev, err := d.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return dev, nil
	}
	return nil, fmt.Errorf("HID device %s not found", path)
}
