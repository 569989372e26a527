package ddcutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/brightctl/bright"
	"github.com/brightctl/bright/internal/edid"
)

// detectedDisplay is one display block from `ddcutil detect -v` output.
type detectedDisplay struct {
	bright.DisplayInfo
	bus     int
	invalid bool
}

var alphaChunks = regexp.MustCompile(`[^A-Za-z]+`)

// parseDetect extracts the supported displays from `ddcutil detect -v`
// output. Invalid display sections still delimit where one display's
// metadata ends, so they are parsed and then dropped.
func parseDetect(output string) []detectedDisplay {
	var displays []detectedDisplay
	var cur *detectedDisplay

	flush := func() {
		if cur != nil && !cur.invalid {
			displays = append(displays, *cur)
		}
		cur = nil
	}

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		indented := strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ")

		switch {
		case strings.HasPrefix(line, "Display") || strings.HasPrefix(line, "Invalid display"):
			flush()
			cur = &detectedDisplay{invalid: strings.HasPrefix(line, "Invalid display")}

		case cur == nil || !indented:
			continue

		case strings.Contains(line, "I2C bus:"):
			if idx := strings.Index(line, "/dev/i2c-"); idx >= 0 {
				if bus, err := strconv.Atoi(strings.TrimSpace(line[idx+len("/dev/i2c-"):])); err == nil {
					cur.bus = bus
				}
			}

		case strings.Contains(line, "Mfg id:"):
			// recent ddcutil prints forms like "BNQ - UNK", so probe each
			// alphabetic chunk for a known 3-letter code
			raw := strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			for _, chunk := range alphaChunks.Split(raw, -1) {
				if len(chunk) != 3 {
					continue
				}
				if code, brand, ok := edid.LookupManufacturer(chunk); ok {
					cur.DisplayInfo.ManufacturerID = code
					cur.DisplayInfo.Manufacturer = brand
					break
				}
			}

		case strings.Contains(line, "Model:"):
			fields := strings.Fields(strings.TrimSpace(strings.SplitN(line, ":", 2)[1]))
			cur.DisplayInfo.Name = strings.Join(fields, " ")
			if len(fields) > 1 {
				cur.DisplayInfo.Model = fields[1]
			}

		case strings.Contains(line, "Serial number:"):
			cur.DisplayInfo.Serial = strings.ReplaceAll(strings.SplitN(line, ":", 2)[1], " ", "")

		case strings.Contains(line, "EDID hex dump:"):
			// the dump proper starts two lines down: a column header line,
			// then 8 rows of "offset  16 hex bytes  ascii"
			var hexParts []string
			for _, row := range sliceLines(lines, i+2, i+10) {
				fields := strings.Fields(row)
				if len(fields) < 17 {
					break
				}
				hexParts = append(hexParts, fields[1:17]...)
			}
			cur.DisplayInfo.EDID = strings.Join(hexParts, "")
		}
	}
	flush()

	return displays
}

// parseVCP extracts (current, max) from terse getvcp output, e.g.
// "VCP 10 C 50 100".
func parseVCP(output string) (current, max int, err error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("unexpected getvcp output %q", strings.TrimSpace(output))
	}

	current, err = strconv.Atoi(fields[len(fields)-2])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected getvcp output %q", strings.TrimSpace(output))
	}
	max, err = strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected getvcp output %q", strings.TrimSpace(output))
	}
	return current, max, nil
}

func sliceLines(lines []string, from, to int) []string {
	if from > len(lines) {
		from = len(lines)
	}
	if to > len(lines) {
		to = len(lines)
	}
	return lines[from:to]
}
