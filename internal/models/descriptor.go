package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
)

// DefaultMaxLength is the display width used when a descriptor has none set
const DefaultMaxLength = 50

// DisplayDateLayout renders dates as a short date with a long time, in UTC
const DisplayDateLayout = "1/2/06, 3:04:05 PM MST"

// DateInputLayouts are tried in order when an edited date is parsed
var DateInputLayouts = []string{
	DisplayDateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// IdentityKind tells whether a descriptor is addressed by key or position
type IdentityKind int

const (
	KeyIdentity IdentityKind = iota
	IndexIdentity
)

// Descriptor wraps the value of one tree node together with its key or
// array position. Its value kind is fixed at creation: edits are parsed back
// into that kind or rejected.
type Descriptor struct {
	identity IdentityKind
	key      string
	index    int
	value    *jsonb.Value
	kind     jsonb.Kind

	// MaxLength bounds Format output; zero means DefaultMaxLength
	MaxLength int
	// ParseOptions are used whenever text is decoded back into a container
	ParseOptions []jsonb.DecodeOption
}

// NewKeyDescriptor creates a descriptor for an object member
func NewKeyDescriptor(key string, value *jsonb.Value) *Descriptor {
	return &Descriptor{identity: KeyIdentity, key: key, value: orNull(value), kind: value.Kind()}
}

// NewIndexDescriptor creates a descriptor for an array element
func NewIndexDescriptor(index int, value *jsonb.Value) *Descriptor {
	return &Descriptor{identity: IndexIdentity, index: index, value: orNull(value), kind: value.Kind()}
}

func orNull(v *jsonb.Value) *jsonb.Value {
	if v == nil {
		return jsonb.Null()
	}
	return v
}

// Identity returns how the descriptor is addressed
func (d *Descriptor) Identity() IdentityKind { return d.identity }

// IsKey reports whether the descriptor belongs to an object member
func (d *Descriptor) IsKey() bool { return d.identity == KeyIdentity }

// Key returns the member key (empty for index descriptors)
func (d *Descriptor) Key() string { return d.key }

// Index returns the array position (zero for key descriptors)
func (d *Descriptor) Index() int { return d.index }

// Label returns the key, or the position rendered as "[i]"
func (d *Descriptor) Label() string {
	if d.identity == IndexIdentity {
		return fmt.Sprintf("[%d]", d.index)
	}
	return d.key
}

// Value returns the current value
func (d *Descriptor) Value() *jsonb.Value { return d.value }

// Kind returns the fixed value kind
func (d *Descriptor) Kind() jsonb.Kind { return d.kind }

func (d *Descriptor) maxLength() int {
	if d.MaxLength > 0 {
		return d.MaxLength
	}
	return DefaultMaxLength
}

// Format returns the display text of the value
func (d *Descriptor) Format() string {
	return FormatValue(d.value, d.maxLength())
}

// FormatValue renders v for display: scalars plainly, strings unquoted,
// containers as canonical JSON, all center-abbreviated to maxLen.
func FormatValue(v *jsonb.Value, maxLen int) string {
	switch v.Kind() {
	case jsonb.KindNull:
		return "null"
	case jsonb.KindBool, jsonb.KindInt, jsonb.KindLong, jsonb.KindDouble:
		return v.String()
	case jsonb.KindString:
		return AbbreviateInCenter(v.AsString(), maxLen)
	case jsonb.KindDate:
		return v.AsTime().UTC().Format(DisplayDateLayout)
	case jsonb.KindArray, jsonb.KindObject:
		return AbbreviateInCenter(v.String(), maxLen)
	default:
		panic(fmt.Sprintf("models: unknown kind %s", v.Kind()))
	}
}

// EditText returns the text a cell editor starts from. Parsing it with Set
// reproduces the current value.
func (d *Descriptor) EditText() string {
	switch d.value.Kind() {
	case jsonb.KindString:
		return d.value.AsString()
	case jsonb.KindDate:
		return d.value.DateText()
	default:
		return d.value.String()
	}
}

// Canonical returns the canonical JSON text of the value
func (d *Descriptor) Canonical() string {
	return d.value.String()
}

// String implements fmt.Stringer
func (d *Descriptor) String() string {
	return d.Canonical()
}

// Set parses text into the descriptor's kind and stores the result. On
// error the previous value is kept.
func (d *Descriptor) Set(text string) error {
	v, err := d.coerce(text)
	if err != nil {
		return err
	}
	d.value = v
	d.kind = v.Kind()
	return nil
}

// Replace stores v directly. v must have the descriptor's kind, except that
// a null descriptor accepts any value.
func (d *Descriptor) Replace(v *jsonb.Value) error {
	v = orNull(v)
	if d.kind != jsonb.KindNull && v.Kind() != d.kind {
		return apperrors.NewCoercionError(
			fmt.Sprintf("cannot replace %s %s with %s", d.kind, d.Label(), v.Kind()), nil)
	}
	d.value = v
	d.kind = v.Kind()
	return nil
}

func (d *Descriptor) coerce(text string) (*jsonb.Value, error) {
	trimmed := strings.TrimSpace(text)

	switch d.kind {
	case jsonb.KindNull:
		// A null leaf adopts whatever JSON is typed into it.
		v, err := jsonb.Parse(trimmed, d.ParseOptions...)
		if err != nil {
			return nil, coercionError(text, d.kind, err)
		}
		return v, nil
	case jsonb.KindBool:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, coercionError(text, d.kind, err)
		}
		return jsonb.Bool(b), nil
	case jsonb.KindInt:
		n, err := strconv.ParseInt(trimmed, 10, 32)
		if err != nil {
			return nil, coercionError(text, d.kind, err)
		}
		return jsonb.Int(int32(n)), nil
	case jsonb.KindLong:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, coercionError(text, d.kind, err)
		}
		return jsonb.Long(n), nil
	case jsonb.KindDouble:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, coercionError(text, d.kind, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, coercionError(text, d.kind, nil)
		}
		return jsonb.Double(f), nil
	case jsonb.KindString:
		return jsonb.String(text), nil
	case jsonb.KindDate:
		return coerceDate(text, trimmed, d.value.DateLayout())
	case jsonb.KindArray, jsonb.KindObject:
		v, err := jsonb.Parse(trimmed, d.ParseOptions...)
		if err != nil {
			return nil, coercionError(text, d.kind, err)
		}
		if v.Kind() != d.kind {
			return nil, coercionError(text, d.kind, nil)
		}
		return v, nil
	default:
		panic(fmt.Sprintf("models: unknown kind %s", d.kind))
	}
}

// ParseDate parses text with the first matching DateInputLayouts entry,
// interpreting zone-less input as UTC.
func ParseDate(text string) (time.Time, error) {
	var firstErr error
	for _, layout := range DateInputLayouts {
		t, err := time.ParseInLocation(layout, text, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// coerceDate parses an edited date, preferring the layout the old value was
// read with so the document keeps writing dates the same way.
func coerceDate(text, trimmed, layout string) (*jsonb.Value, error) {
	if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
		return jsonb.DateWithLayout(t, layout), nil
	}
	t, err := ParseDate(trimmed)
	if err != nil {
		return nil, coercionError(text, jsonb.KindDate, err)
	}
	kept := jsonb.DateWithLayout(t, layout)
	if back, err := time.ParseInLocation(layout, kept.DateText(), time.UTC); err == nil && back.Equal(t) {
		return kept, nil
	}
	return jsonb.Date(t), nil
}

func coercionError(text string, kind jsonb.Kind, err error) error {
	return apperrors.NewCoercionError(fmt.Sprintf("%q is not a valid %s", text, kind), err)
}
