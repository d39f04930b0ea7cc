package reconcile

import (
	"sort"
	"strconv"
	"strings"
)

// defaultCentury prefixes 2-digit year tokens that have no 4-digit sibling
// supplying the century.
const defaultCentury = "20"

// ExpandYears parses a free-text year specification such as "14-17, 2020"
// into explicit 4-digit years, deduplicated and sorted ascending. Tokens
// that cannot be parsed are collected in skipped instead of aborting; the
// caller decides whether to log them.
func ExpandYears(spec string) (years []string, skipped []string) {
	seen := make(map[int]struct{})
	for _, token := range splitYearTokens(spec) {
		expanded, ok := expandYearToken(token)
		if !ok {
			skipped = append(skipped, token)
			continue
		}
		for _, y := range expanded {
			seen[y] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(seen))
	for y := range seen {
		sorted = append(sorted, y)
	}
	sort.Ints(sorted)

	years = make([]string, 0, len(sorted))
	for _, y := range sorted {
		years = append(years, strconv.Itoa(y))
	}
	return years, skipped
}

// splitYearTokens splits the raw specification on commas and whitespace
func splitYearTokens(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// expandYearToken expands one token: either a single year or an inclusive
// hyphenated range. 2-digit years borrow the century from a 4-digit range
// sibling when one exists, otherwise the fixed default applies.
func expandYearToken(token string) ([]int, bool) {
	idx := strings.IndexByte(token, '-')
	if idx < 0 {
		year, ok := normalizeYear(token, defaultCentury)
		if !ok {
			return nil, false
		}
		return []int{year}, true
	}

	startRaw := token[:idx]
	endRaw := token[idx+1:]

	century := defaultCentury
	if len(endRaw) == 4 {
		century = endRaw[:2]
	}
	if len(startRaw) == 4 {
		century = startRaw[:2]
	}

	start, ok := normalizeYear(startRaw, century)
	if !ok {
		return nil, false
	}
	end, ok := normalizeYear(endRaw, century)
	if !ok {
		return nil, false
	}
	// Century roll-over: "1998-01" means 1998 through 2001
	if end < start && len(endRaw) == 2 && len(startRaw) == 4 {
		end += 100
	}
	if end < start {
		return nil, false
	}

	out := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		out = append(out, y)
	}
	return out, true
}

// normalizeYear converts a 2- or 4-digit token to a full year
func normalizeYear(raw, century string) (int, bool) {
	switch len(raw) {
	case 4:
		// fall through to parse
	case 2:
		raw = century + raw
	default:
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
