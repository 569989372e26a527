// SPDX-License-Identifier: GPL-3.0-only

package bright

import (
	"fmt"
	"strconv"
)

// Snapshot enumerates every registered method (or only the named one) and
// returns one deduplicated listing of all detected displays.
//
// A method that fails to enumerate contributes zero records and is skipped;
// the call itself fails with ErrNoDisplaysDetected only when the combined
// listing is empty after the configured retries. Global indices are assigned
// in method registration order, then in each method's own enumeration order,
// and are only meaningful within the returned slice.
func (c *Controller) Snapshot(method string, allowDuplicates bool) ([]DisplayInfo, error) {
	methods, err := c.methods.filtered(method)
	if err != nil {
		return nil, err
	}

	key := method + "|" + strconv.FormatBool(allowDuplicates)
	if records, ok := c.cache.get(key); ok {
		return records, nil
	}

	var records []DisplayInfo
	var failures []error
	for attempt := 0; ; attempt++ {
		records, failures = c.enumerate(methods)
		if len(records) > 0 || attempt >= c.cfg.EnumRetries {
			break
		}
		c.sleep(c.cfg.RetryDelay)
	}

	if len(records) == 0 {
		// A stale cached snapshot must not outlive a failed enumeration.
		c.cache.invalidate()
		var suffix string
		if method != "" {
			suffix = fmt.Sprintf(" with method %q", method)
		}
		if len(failures) == len(methods) && len(failures) > 0 {
			return nil, fmt.Errorf("%w%s (all %d methods failed)", ErrNoDisplaysDetected, suffix, len(methods))
		}
		return nil, fmt.Errorf("%w%s", ErrNoDisplaysDetected, suffix)
	}

	if !allowDuplicates {
		records = dedupe(records)
	}
	for i := range records {
		records[i].GlobalIndex = i
	}

	c.cache.put(key, records)
	return records, nil
}

// enumerate collects the records of each method in order, isolating
// per-method failures.
func (c *Controller) enumerate(methods []Method) ([]DisplayInfo, []error) {
	var records []DisplayInfo
	var failures []error
	for _, m := range methods {
		infos, err := m.GetDisplayInfo()
		if err != nil {
			failures = append(failures, err)
			c.logger.Debug().Str("method", m.Name()).Err(err).Msg("enumeration failed, skipping method")
			continue
		}
		for i, info := range infos {
			info.MethodIndex = i
			info.Method = m
			records = append(records, info)
		}
	}
	return records, failures
}

// dedupe drops records that describe a physical display already reported by
// an earlier method. The first record encountered wins; later duplicates are
// dropped entirely, never merged. Records from the same method are never
// considered duplicates of each other.
func dedupe(records []DisplayInfo) []DisplayInfo {
	kept := make([]DisplayInfo, 0, len(records))
	for _, rec := range records {
		duplicate := false
		for _, prev := range kept {
			if rec.Method == prev.Method {
				continue
			}
			if sameDisplay(rec, prev) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, rec)
		}
	}
	return kept
}

// sameDisplay decides whether two records from different methods denote the
// same physical display. The identity signals mirror the matcher's priority
// tiers exactly: EDID, then serial, then the (name, model) pair. A tier is
// decisive as soon as both records carry it.
func sameDisplay(a, b DisplayInfo) bool {
	if a.EDID != "" && b.EDID != "" {
		return a.EDID == b.EDID
	}
	if a.Serial != "" && b.Serial != "" {
		return a.Serial == b.Serial
	}
	return a.Name != "" && a.Model != "" && a.Name == b.Name && a.Model == b.Model
}
