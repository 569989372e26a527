package edid_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightctl/bright/internal/edid"
)

// buildEDID assembles a minimal base block with the given manufacturer id
// word and descriptor payloads.
func buildEDID(mfg uint16, name, serial string) []byte {
	raw := make([]byte, edid.BlockSize)
	copy(raw, []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00})
	raw[8] = byte(mfg >> 8)
	raw[9] = byte(mfg)

	writeDescriptor := func(offset int, tag byte, text string) {
		raw[offset+3] = tag
		payload := raw[offset+5 : offset+18]
		n := copy(payload, text)
		if n < len(payload) {
			payload[n] = '\n'
			for i := n + 1; i < len(payload); i++ {
				payload[i] = ' '
			}
		}
	}

	if name != "" {
		writeDescriptor(54, 0xfc, name)
	}
	if serial != "" {
		writeDescriptor(72, 0xff, serial)
	}
	return raw
}

// 0x10ac encodes "DEL": three 5-bit letters (D=4, E=5, L=12) packed
// big-endian after a reserved zero bit.
const dellMfg = 0x10ac

func TestParse(t *testing.T) {
	raw := buildEDID(dellMfg, "Dell U2419H", "SN-12345")

	id, err := edid.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "DEL", id.ManufacturerID)
	assert.Equal(t, "Dell", id.Manufacturer)
	assert.Equal(t, "Dell U2419H", id.Name)
	assert.Equal(t, "SN-12345", id.Serial)
	assert.Equal(t, "U2419H", id.Model)
}

func TestParseUnknownManufacturer(t *testing.T) {
	// 0x0421 encodes "AAA" (A=1 in each 5-bit group)
	raw := buildEDID(0x0421, "Mystery Monitor X1", "")

	id, err := edid.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "AAA", id.ManufacturerID)
	assert.Empty(t, id.Manufacturer)
	assert.Equal(t, "X1", id.Model, "model falls back to the last name field")
}

func TestParseNoDescriptors(t *testing.T) {
	raw := buildEDID(dellMfg, "", "")

	id, err := edid.Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, id.Name)
	assert.Empty(t, id.Serial)
	assert.Empty(t, id.Model)
}

func TestParseErrors(t *testing.T) {
	_, err := edid.Parse([]byte{0x00, 0xff})
	assert.ErrorIs(t, err, edid.ErrInvalid)

	bad := buildEDID(dellMfg, "Dell U2419H", "")
	bad[0] = 0x55
	_, err = edid.Parse(bad)
	assert.ErrorIs(t, err, edid.ErrInvalid)
}

func TestParseHex(t *testing.T) {
	raw := buildEDID(dellMfg, "Dell U2419H", "SN-12345")

	// whitespace from hexdump style sources is tolerated
	encoded := hex.EncodeToString(raw[:16]) + "\n " + hex.EncodeToString(raw[16:])

	id, err := edid.ParseHex(encoded)
	require.NoError(t, err)
	assert.Equal(t, "Dell U2419H", id.Name)

	_, err = edid.ParseHex("not hex at all")
	assert.ErrorIs(t, err, edid.ErrInvalid)
}

func TestLookupManufacturer(t *testing.T) {
	code, brand, ok := edid.LookupManufacturer("BNQ")
	require.True(t, ok)
	assert.Equal(t, "BNQ", code)
	assert.Equal(t, "BenQ", brand)

	// both directions, case-insensitively
	code, _, ok = edid.LookupManufacturer("benq")
	require.True(t, ok)
	assert.Equal(t, "BNQ", code)

	_, _, ok = edid.LookupManufacturer("ZZZ")
	assert.False(t, ok)
}
