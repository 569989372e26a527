// Package edid extracts display identity (manufacturer, model, name, serial)
// from raw EDID blocks per the fixed EDID 1.4 layout.
package edid

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// BlockSize is the size of the base EDID block. Extended EDIDs carry extra
// 128-byte extension blocks which hold no identity data we care about.
const BlockSize = 128

// ErrInvalid is returned for data that is not a parseable EDID block.
var ErrInvalid = errors.New("invalid EDID")

var (
	header           = []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}
	serialDescriptor = []byte{0x00, 0x00, 0x00, 0xff, 0x00}
	nameDescriptor   = []byte{0x00, 0x00, 0x00, 0xfc, 0x00}
)

// descriptor block offsets within the base block
var descriptorOffsets = []int{54, 72, 90, 108}

// Identity holds the display identity fields recoverable from an EDID.
// Fields that cannot be determined are left empty.
type Identity struct {
	ManufacturerID string
	Manufacturer   string
	Model          string
	Name           string
	Serial         string
}

// Parse decodes the identity fields from a raw EDID block.
func Parse(raw []byte) (Identity, error) {
	if len(raw) < BlockSize {
		return Identity{}, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalid, len(raw), BlockSize)
	}
	if !bytes.Equal(raw[:8], header) {
		return Identity{}, fmt.Errorf("%w: bad header", ErrInvalid)
	}

	var id Identity

	// manufacturer id: 2 bytes big-endian, three 5-bit letters after a
	// reserved zero bit
	mfg := binary.BigEndian.Uint16(raw[8:10])
	id.ManufacturerID = string([]byte{
		byte(mfg>>10&0x1f) + 64,
		byte(mfg>>5&0x1f) + 64,
		byte(mfg&0x1f) + 64,
	})
	if _, brand, ok := LookupManufacturer(id.ManufacturerID); ok {
		id.Manufacturer = brand
	}

	for _, off := range descriptorOffsets {
		block := raw[off : off+18]
		switch {
		case bytes.HasPrefix(block, serialDescriptor):
			id.Serial = descriptorText(block)
		case bytes.HasPrefix(block, nameDescriptor):
			id.Name = descriptorText(block)
		}
	}

	id.Model = deriveModel(id.Name, id.Manufacturer)
	return id, nil
}

// ParseHex decodes the identity fields from a hex-encoded EDID, ignoring
// whitespace.
func ParseHex(s string) (Identity, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, s)

	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Parse(raw)
}

// Hexdump reads a binary EDID file (e.g. a sysfs drm edid node) and returns
// its contents as one lowercase hex string. An empty file yields "".
func Hexdump(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// descriptorText extracts the 13-byte text payload of a display descriptor,
// stripping the newline terminator and space padding.
func descriptorText(block []byte) string {
	text := block[len(serialDescriptor):]
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return string(bytes.TrimRight(text, " \x00"))
}

// deriveModel guesses the model from the display name, e.g.
// "BenQ GL2450H" -> "GL2450H".
func deriveModel(name, manufacturer string) string {
	if name == "" {
		return ""
	}

	if manufacturer != "" && strings.HasPrefix(name, manufacturer) {
		if model := strings.TrimSpace(strings.TrimPrefix(name, manufacturer)); model != "" {
			return model
		}
	}

	fields := strings.Fields(name)
	if len(fields) > 1 {
		return fields[len(fields)-1]
	}
	// name carries no model information
	return "Generic Monitor"
}
