package jsonb

import (
	"fmt"
	"time"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindLong
	KindDouble
	KindString
	KindDate
	KindArray
	KindObject
)

// String returns the lowercase kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsNumber reports whether k is one of the numeric kinds
func (k Kind) IsNumber() bool {
	return k == KindInt || k == KindLong || k == KindDouble
}

// IsContainer reports whether k is an array or an object
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindObject
}

// Member is one key/value pair of an object
type Member struct {
	Key   string
	Value *Value
}

// Value is a mutable JSON value. Objects keep their members in insertion
// order and numbers keep the int/long/double kind they were decoded with.
//
// A nil *Value reads as JSON null.
type Value struct {
	kind Kind
	b    bool
	n    int64
	f    float64
	s    string
	t    time.Time
	// layout is the time layout a date was read with, "" for RFC 3339
	layout string
	arr    []*Value
	obj    []Member
}

// Null returns a new null value
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a new boolean value
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int returns a new 32-bit integer value
func Int(n int32) *Value { return &Value{kind: KindInt, n: int64(n)} }

// Long returns a new 64-bit integer value
func Long(n int64) *Value { return &Value{kind: KindLong, n: n} }

// Double returns a new floating point value
func Double(f float64) *Value { return &Value{kind: KindDouble, f: f} }

// String returns a new string value
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Date returns a new date value written as RFC 3339
func Date(t time.Time) *Value { return &Value{kind: KindDate, t: t} }

// DateWithLayout returns a new date value written back with layout, so text
// read with a custom date layout encodes to the same text.
func DateWithLayout(t time.Time, layout string) *Value {
	if layout == time.RFC3339 || layout == time.RFC3339Nano {
		layout = ""
	}
	return &Value{kind: KindDate, t: t, layout: layout}
}

// NewArray returns a new array holding elems
func NewArray(elems ...*Value) *Value {
	arr := make([]*Value, 0, len(elems))
	for _, e := range elems {
		arr = append(arr, orNull(e))
	}
	return &Value{kind: KindArray, arr: arr}
}

// NewObject returns a new empty object
func NewObject() *Value {
	return &Value{kind: KindObject, obj: make([]Member, 0)}
}

func orNull(v *Value) *Value {
	if v == nil {
		return Null()
	}
	return v
}

// Kind returns the variant of v
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is JSON null
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// IsArray reports whether v is an array
func (v *Value) IsArray() bool { return v.Kind() == KindArray }

// IsObject reports whether v is an object
func (v *Value) IsObject() bool { return v.Kind() == KindObject }

// AsBool returns the boolean held by v
func (v *Value) AsBool() bool { return v != nil && v.b }

// AsInt returns the integer held by an Int or Long value
func (v *Value) AsInt() int64 {
	if v == nil {
		return 0
	}
	return v.n
}

// AsDouble returns v as a float64 for any numeric kind
func (v *Value) AsDouble() float64 {
	switch v.Kind() {
	case KindInt, KindLong:
		return float64(v.n)
	case KindDouble:
		return v.f
	default:
		return 0
	}
}

// AsString returns the text held by a String value
func (v *Value) AsString() string {
	if v == nil {
		return ""
	}
	return v.s
}

// AsTime returns the instant held by a Date value
func (v *Value) AsTime() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.t
}

// DateLayout returns the layout a Date value is written with
func (v *Value) DateLayout() string {
	if v == nil || v.layout == "" {
		return time.RFC3339Nano
	}
	return v.layout
}

// DateText returns a Date value as it appears in JSON, unquoted
func (v *Value) DateText() string {
	return v.AsTime().Format(v.DateLayout())
}

// Len returns the number of elements or members, 0 for scalars
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i-th array element
func (v *Value) Index(i int) *Value {
	return v.arr[i]
}

// SetIndex replaces the i-th array element
func (v *Value) SetIndex(i int, elem *Value) {
	v.arr[i] = orNull(elem)
}

// Append adds elem to the end of an array
func (v *Value) Append(elem *Value) {
	v.arr = append(v.arr, orNull(elem))
}

// Elements returns the array elements. The slice is shared with v.
func (v *Value) Elements() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.arr
}

// Get returns the member value stored under key
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set stores val under key. An existing key keeps its position, a new key
// is appended.
func (v *Value) Set(key string, val *Value) {
	val = orNull(val)
	for i := range v.obj {
		if v.obj[i].Key == key {
			v.obj[i].Value = val
			return
		}
	}
	v.obj = append(v.obj, Member{Key: key, Value: val})
}

// Delete removes key from an object and reports whether it was present
func (v *Value) Delete(key string) bool {
	for i := range v.obj {
		if v.obj[i].Key == key {
			v.obj = append(v.obj[:i], v.obj[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the object keys in insertion order
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	keys := make([]string, len(v.obj))
	for i, m := range v.obj {
		keys[i] = m.Key
	}
	return keys
}

// Members returns the object members. The slice is shared with v.
func (v *Value) Members() []Member {
	if v.Kind() != KindObject {
		return nil
	}
	return v.obj
}

// Clone returns a deep copy of v
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	c := *v
	switch v.kind {
	case KindArray:
		c.arr = make([]*Value, len(v.arr))
		for i, e := range v.arr {
			c.arr[i] = e.Clone()
		}
	case KindObject:
		c.obj = make([]Member, len(v.obj))
		for i, m := range v.obj {
			c.obj[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return &c
}

// Equal reports whether v and other hold the same structure, including
// member order and numeric kind.
func (v *Value) Equal(other *Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt, KindLong:
		return v.n == other.n
	case KindDouble:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindDate:
		return v.t.Equal(other.t)
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for i := range v.obj {
			if v.obj[i].Key != other.obj[i].Key || !v.obj[i].Value.Equal(other.obj[i].Value) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("jsonb: unknown kind %d", v.Kind()))
	}
}
