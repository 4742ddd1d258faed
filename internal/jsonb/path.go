package jsonb

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a value inside a document (e.g., $.user.address[0].city).
// Array positions are stored as their decimal text.
type Path struct {
	Parts []string
}

// String returns the JSONPath-style notation
func (p Path) String() string {
	if len(p.Parts) == 0 {
		return "$"
	}

	var b strings.Builder
	b.WriteString("$")
	for _, part := range p.Parts {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
		} else {
			b.WriteString("." + part)
		}
	}
	return b.String()
}

// PostgreSQLPath returns the PostgreSQL #> operator notation
func (p Path) PostgreSQLPath() string {
	return "{" + strings.Join(p.Parts, ",") + "}"
}

// ParsePath parses dotted notation with optional bracketed indexes:
// "a.b", "$.a.b", "items[3].name", "[0].id".
func ParsePath(s string) (Path, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	var parts []string
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return Path{}, fmt.Errorf("unterminated index in path")
			}
			idx := s[1:end]
			if _, err := strconv.Atoi(idx); err != nil {
				return Path{}, fmt.Errorf("invalid array index: %s", idx)
			}
			parts = append(parts, idx)
			s = s[end+1:]
		default:
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			parts = append(parts, s[:end])
			s = s[end:]
		}
	}
	return Path{Parts: parts}, nil
}

// GetValueAtPath retrieves a value at a specific path
func GetValueAtPath(v *Value, path Path) (*Value, error) {
	current := v
	for _, part := range path.Parts {
		switch current.Kind() {
		case KindObject:
			val, ok := current.Get(part)
			if !ok {
				return nil, fmt.Errorf("key '%s' not found", part)
			}
			current = val
		case KindArray:
			idx, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid array index: %s", part)
			}
			if idx < 0 || idx >= current.Len() {
				return nil, fmt.Errorf("array index out of bounds: %d", idx)
			}
			current = current.Index(idx)
		default:
			return nil, fmt.Errorf("cannot traverse into %s", current.Kind())
		}
	}
	return current, nil
}

// SetValueAtPath replaces the value at path, which must already exist. The
// empty path addresses v itself and cannot be replaced in place.
func SetValueAtPath(v *Value, path Path, val *Value) error {
	if len(path.Parts) == 0 {
		return fmt.Errorf("cannot replace the document root")
	}

	parent, err := GetValueAtPath(v, Path{Parts: path.Parts[:len(path.Parts)-1]})
	if err != nil {
		return err
	}

	last := path.Parts[len(path.Parts)-1]
	switch parent.Kind() {
	case KindObject:
		if _, ok := parent.Get(last); !ok {
			return fmt.Errorf("key '%s' not found", last)
		}
		parent.Set(last, val)
	case KindArray:
		idx, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("invalid array index: %s", last)
		}
		if idx < 0 || idx >= parent.Len() {
			return fmt.Errorf("array index out of bounds: %d", idx)
		}
		parent.SetIndex(idx, val)
	default:
		return fmt.Errorf("cannot traverse into %s", parent.Kind())
	}
	return nil
}
