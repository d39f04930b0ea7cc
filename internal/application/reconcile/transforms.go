package reconcile

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Deployment-specific string transforms
// ---------------------------------------------------------------------------
//
// These are lexical rules tied to how the deployment names warehouses,
// items, and promotional categories. They are kept as swappable functions
// so the engine itself stays free of locale-specific literals.

// BranchNamer derives a storefront branch slug from a warehouse name
type BranchNamer func(warehouse string) string

// NewBranchNamer builds a warehouse-to-branch transform that lower-cases
// the name, strips the given suffix and location tokens, slugs spaces into
// hyphens and appends "-branch".
func NewBranchNamer(suffixToken, locationToken string) BranchNamer {
	suffix := strings.ToLower(suffixToken)
	location := strings.ToLower(locationToken)
	return func(warehouse string) string {
		name := strings.ToLower(warehouse)
		if suffix != "" {
			name = strings.ReplaceAll(name, suffix, "")
		}
		if location != "" {
			name = strings.ReplaceAll(name, location, "")
		}
		name = strings.TrimSpace(name)
		name = strings.ReplaceAll(name, " ", "-")
		return name + "-branch"
	}
}

// DefaultBranchNamer returns the deployed transform: strips the word
// "warehouse" and the " - ame" location code.
func DefaultBranchNamer() BranchNamer {
	return NewBranchNamer("warehouse", " - ame")
}

var latinRunPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9 /.&()'+_-]*[A-Za-z0-9)]|[A-Za-z0-9]`)

// CleanProductName extracts the Latin-script portion of a mixed-script item
// name. Names without Arabic text pass through trimmed; names that are
// entirely non-Latin also pass through rather than becoming empty.
func CleanProductName(name string) string {
	trimmed := strings.TrimSpace(name)
	if !containsArabic(trimmed) {
		return trimmed
	}
	runs := latinRunPattern.FindAllString(trimmed, -1)
	cleaned := strings.TrimSpace(strings.Join(runs, " "))
	if cleaned == "" {
		return trimmed
	}
	return cleaned
}

// containsArabic reports whether the string has any Arabic-block rune
func containsArabic(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// splitOptions splits a raw comma-separated attribute value string into
// trimmed, non-empty options.
func splitOptions(values string) []string {
	var out []string
	for _, part := range strings.Split(values, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Slugify lowers a name and collapses non-alphanumeric runs into single
// hyphens, matching how the storefront slugs taxonomy terms.
func Slugify(value string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(value) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
