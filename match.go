package bright

import (
	"fmt"
	"strings"
)

// Match resolves a display identifier against a slice of candidate records.
//
// An Index identifier selects the candidate at that position and fails with
// an IndexError when out of bounds. A Query identifier is tested against the
// candidates in strict priority order: EDID, then serial, then name, then
// model. All candidates matching at the first tier that produces any match
// are returned; lower tiers are never consulted once a tier matches. Name
// and model can legitimately collide across identical physical units, so
// callers must expect plural results.
//
// All comparisons are exact and case-sensitive. MatchFold provides the
// case-insensitive variant for name and model lookup.
func Match(query Identifier, candidates []DisplayInfo) ([]DisplayInfo, error) {
	return match(query, candidates, func(a, b string) bool { return a == b })
}

// MatchFold behaves like Match but compares the name and model tiers
// case-insensitively. The EDID and serial tiers stay case-sensitive since
// those values are opaque identifiers.
func MatchFold(query Identifier, candidates []DisplayInfo) ([]DisplayInfo, error) {
	return match(query, candidates, strings.EqualFold)
}

func match(query Identifier, candidates []DisplayInfo, fold func(a, b string) bool) ([]DisplayInfo, error) {
	switch q := query.(type) {
	case nil:
		out := make([]DisplayInfo, len(candidates))
		copy(out, candidates)
		return out, nil

	case Index:
		i := int(q)
		if i < 0 || i >= len(candidates) {
			return nil, &IndexError{Index: i, Count: len(candidates)}
		}
		return []DisplayInfo{candidates[i]}, nil

	case Query:
		s := string(q)
		tiers := []func(d DisplayInfo) bool{
			func(d DisplayInfo) bool { return d.EDID != "" && d.EDID == s },
			func(d DisplayInfo) bool { return d.Serial != "" && d.Serial == s },
			func(d DisplayInfo) bool { return d.Name != "" && fold(d.Name, s) },
			func(d DisplayInfo) bool { return d.Model != "" && fold(d.Model, s) },
		}
		for _, tier := range tiers {
			var matched []DisplayInfo
			for _, d := range candidates {
				if tier(d) {
					matched = append(matched, d)
				}
			}
			if len(matched) > 0 {
				return matched, nil
			}
		}
		return nil, fmt.Errorf("%w with edid/serial/name/model of %q", ErrNoMatchingDisplay, s)

	default:
		return nil, fmt.Errorf("unsupported identifier type %T", query)
	}
}
