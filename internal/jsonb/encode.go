package jsonb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String returns the canonical compact JSON text of v. Decoding the result
// with Parse yields a value Equal to v.
func (v *Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v *Value) writeTo(b *strings.Builder) {
	switch v.Kind() {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt, KindLong:
		b.WriteString(strconv.FormatInt(v.n, 10))
	case KindDouble:
		b.WriteString(FormatDouble(v.f))
	case KindString:
		b.WriteString(Quote(v.s))
	case KindDate:
		b.WriteString(Quote(v.DateText()))
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeTo(b)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(m.Key))
			b.WriteByte(':')
			m.Value.writeTo(b)
		}
		b.WriteByte('}')
	default:
		panic(fmt.Sprintf("jsonb: unknown kind %d", v.Kind()))
	}
}

// FormatDouble renders f so that it decodes back to a double: integral
// values keep a ".0" suffix.
func FormatDouble(f float64) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'f' && !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Quote returns s as a JSON string literal without HTML escaping
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// encoding a Go string cannot fail
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
