package example

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/persistorai/namedgraph/internal/models"
)

// Sentinel errors for malformed example and restriction arguments.
var (
	ErrInvalidExample     = errors.New("invalid edge example")
	ErrInvalidRestriction = errors.New("invalid edge collection restriction")
)

// Pattern is one attribute example. The empty pattern matches every document.
type Pattern map[string]Value

// NewPattern converts a decoded JSON object into a Pattern.
func NewPattern(fields map[string]any) (Pattern, error) {
	p := make(Pattern, len(fields))

	for k, raw := range fields {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %w", ErrInvalidExample, k, err)
		}

		p[k] = v
	}

	return p, nil
}

// IDPattern is the pattern a bare string example stands for.
func IDPattern(id string) Pattern {
	return Pattern{models.AttrID: String(id)}
}

// Match reports whether every attribute of p is present on doc with an
// equal value.
func (p Pattern) Match(doc *models.Document) bool {
	for name, want := range p {
		raw, ok := doc.Attribute(name)
		if !ok {
			return false
		}

		got, err := FromAny(raw)
		if err != nil || !want.Equal(got) {
			return false
		}
	}

	return true
}

// Keys returns the attribute names of p in sorted order.
func (p Pattern) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Matches reports whether doc satisfies at least one pattern. An empty list
// accepts everything.
func Matches(doc *models.Document, patterns []Pattern) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, p := range patterns {
		if p.Match(doc) {
			return true
		}
	}

	return false
}

// ParsePatterns decodes the examples argument of EDGES. Accepted shapes:
// nil or an empty list (no filtering), one object, a list of objects, or a
// bare string s standing for {_id: s}. List elements may also be strings.
func ParsePatterns(raw any) ([]Pattern, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []Pattern{IDPattern(t)}, nil
	case Pattern:
		return []Pattern{t}, nil
	case []Pattern:
		return t, nil
	case map[string]any:
		p, err := NewPattern(t)
		if err != nil {
			return nil, err
		}

		return []Pattern{p}, nil
	case []map[string]any:
		out := make([]Pattern, 0, len(t))
		for _, fields := range t {
			p, err := NewPattern(fields)
			if err != nil {
				return nil, err
			}

			out = append(out, p)
		}

		return out, nil
	case []any:
		out := make([]Pattern, 0, len(t))
		for i, item := range t {
			switch it := item.(type) {
			case string:
				out = append(out, IDPattern(it))
			case map[string]any:
				p, err := NewPattern(it)
				if err != nil {
					return nil, err
				}

				out = append(out, p)
			default:
				return nil, fmt.Errorf("%w: element %d is %T, want object or string", ErrInvalidExample, i, item)
			}
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: got %T, want object, list or string", ErrInvalidExample, raw)
}

// ParsePatternsJSON decodes examples from raw JSON. Numbers keep full
// precision until they are converted.
func ParsePatternsJSON(data json.RawMessage) ([]Pattern, error) {
	if isAbsent(data) {
		return nil, nil
	}

	raw, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExample, err)
	}

	return ParsePatterns(raw)
}

// ParseRestrictions decodes the edge collection restriction argument:
// nil or an empty list, one name, or a list of names.
func ParseRestrictions(raw any) ([]string, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, fmt.Errorf("%w: empty collection name", ErrInvalidRestriction)
		}

		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, want string", ErrInvalidRestriction, i, item)
			}

			out = append(out, s)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: got %T, want string or list of strings", ErrInvalidRestriction, raw)
}

// ParseRestrictionsJSON decodes a restriction from raw JSON.
func ParseRestrictionsJSON(data json.RawMessage) ([]string, error) {
	if isAbsent(data) {
		return nil, nil
	}

	raw, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRestriction, err)
	}

	return ParseRestrictions(raw)
}

func isAbsent(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return raw, nil
}
