// Package pathmap implements generic get/set over semi-structured trees
// (maps, lists, scalars) addressed by path expressions. It is the engine
// behind configurable field mapping onto remote product payloads.
//
// The walker is an explicit typed traversal over the JSON-shaped union
// map[string]any | []any | scalar; no reflection-based attribute access.
//
// Supported expression forms:
//
//	name.nested.field          dot field access
//	items[0].sku               bracket index
//	attributes[*].options      wildcard over list elements
//	meta_data[?(@.key=='x')]   equality filter over list elements
//
// A leading "$." or "$" prefix is accepted and ignored.
package pathmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath indicates a path expression that cannot be parsed
var ErrInvalidPath = errors.New("pathmap: invalid path expression")

// ---------------------------------------------------------------------------
// Path and segments
// ---------------------------------------------------------------------------

// Path is a parsed path expression
type Path struct {
	raw      string
	segments []segment
}

type segment interface {
	describe() string
}

type fieldSeg struct{ name string }

func (s fieldSeg) describe() string { return s.name }

type indexSeg struct{ index int }

func (s indexSeg) describe() string { return fmt.Sprintf("[%d]", s.index) }

type wildcardSeg struct{}

func (s wildcardSeg) describe() string { return "[*]" }

type filterSeg struct {
	field string
	value string
}

func (s filterSeg) describe() string { return fmt.Sprintf("[?(@.%s=='%s')]", s.field, s.value) }

// String returns the original expression
func (p *Path) String() string {
	return p.raw
}

// Root returns the top-level field name the path enters the tree through,
// or "" when the expression starts with a non-field selector.
func (p *Path) Root() string {
	if f, ok := p.segments[0].(fieldSeg); ok {
		return f.name
	}
	return ""
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses a path expression
func Parse(expr string) (*Path, error) {
	trimmed := strings.TrimSpace(expr)
	body := strings.TrimPrefix(trimmed, "$")
	body = strings.TrimPrefix(body, ".")
	if body == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, expr)
	}

	var segs []segment
	i := 0
	for i < len(body) {
		switch body[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(body[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidPath, expr)
			}
			inner := body[i+1 : i+end]
			seg, err := parseBracket(inner)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", err, expr)
			}
			segs = append(segs, seg)
			i += end + 1
		default:
			j := i
			for j < len(body) && body[j] != '.' && body[j] != '[' {
				j++
			}
			segs = append(segs, fieldSeg{name: body[i:j]})
			i = j
		}
	}

	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, expr)
	}
	return &Path{raw: trimmed, segments: segs}, nil
}

// parseBracket parses the inside of a bracket selector
func parseBracket(inner string) (segment, error) {
	inner = strings.TrimSpace(inner)
	switch {
	case inner == "*":
		return wildcardSeg{}, nil
	case strings.HasPrefix(inner, "?(@.") && strings.HasSuffix(inner, ")"):
		cond := inner[len("?(@.") : len(inner)-1]
		eq := strings.Index(cond, "==")
		if eq < 0 {
			return nil, ErrInvalidPath
		}
		field := strings.TrimSpace(cond[:eq])
		value := strings.TrimSpace(cond[eq+2:])
		value = strings.Trim(value, "'\"")
		if field == "" {
			return nil, ErrInvalidPath
		}
		return filterSeg{field: field, value: value}, nil
	case strings.HasPrefix(inner, "'") || strings.HasPrefix(inner, "\""):
		// Quoted key access is equivalent to a dot field
		return fieldSeg{name: strings.Trim(inner, "'\"")}, nil
	default:
		idx, err := strconv.Atoi(inner)
		if err != nil || idx < 0 {
			return nil, ErrInvalidPath
		}
		return indexSeg{index: idx}, nil
	}
}

// ---------------------------------------------------------------------------
// Matching
// ---------------------------------------------------------------------------

// Match is one located node in the tree. The parent container reference
// allows in-place mutation.
type Match struct {
	// Value is the matched node's current value
	Value any

	parentMap  map[string]any
	parentList []any
	key        string
	index      int
}

// Set overwrites the matched node in place
func (m *Match) Set(value any) {
	if m.parentMap != nil {
		m.parentMap[m.key] = value
		return
	}
	if m.parentList != nil {
		m.parentList[m.index] = value
	}
}

// Find locates all nodes addressed by the path. Callers expecting a single
// value take the first match.
func (p *Path) Find(tree any) []Match {
	current := []Match{{Value: tree}}
	for _, seg := range p.segments {
		var next []Match
		for _, m := range current {
			next = append(next, stepInto(m.Value, seg)...)
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Set writes value at every node the path addresses, mutating the tree in
// place, and returns the number of nodes written.
func (p *Path) Set(tree any, value any) int {
	matches := p.Find(tree)
	for i := range matches {
		matches[i].Set(value)
	}
	return len(matches)
}

// stepInto applies one segment to a node, producing child matches
func stepInto(node any, seg segment) []Match {
	switch s := seg.(type) {
	case fieldSeg:
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := m[s.name]
		if !exists {
			return nil
		}
		return []Match{{Value: value, parentMap: m, key: s.name}}

	case indexSeg:
		list, ok := node.([]any)
		if !ok || s.index >= len(list) {
			return nil
		}
		return []Match{{Value: list[s.index], parentList: list, index: s.index}}

	case wildcardSeg:
		switch c := node.(type) {
		case []any:
			out := make([]Match, 0, len(c))
			for i, v := range c {
				out = append(out, Match{Value: v, parentList: c, index: i})
			}
			return out
		case map[string]any:
			out := make([]Match, 0, len(c))
			for k, v := range c {
				out = append(out, Match{Value: v, parentMap: c, key: k})
			}
			return out
		}
		return nil

	case filterSeg:
		list, ok := node.([]any)
		if !ok {
			return nil
		}
		var out []Match
		for i, v := range list {
			elem, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if stringify(elem[s.field]) == s.value {
				out = append(out, Match{Value: v, parentList: list, index: i})
			}
		}
		return out
	}
	return nil
}

// stringify renders a scalar for filter comparison
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
