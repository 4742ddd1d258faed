package jsonb

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/valyala/fastjson"
)

// DefaultDateLayouts are the layouts tried when date detection is enabled
// without explicit layouts.
var DefaultDateLayouts = []string{time.RFC3339}

type decodeConfig struct {
	dateLayouts []string
}

// DecodeOption configures Parse
type DecodeOption func(*decodeConfig)

// WithDateDetection makes Parse turn string literals matching one of the
// layouts into Date values.
func WithDateDetection(layouts ...string) DecodeOption {
	return func(c *decodeConfig) {
		if len(layouts) == 0 {
			layouts = DefaultDateLayouts
		}
		c.dateLayouts = layouts
	}
}

// Parse decodes a single JSON document
func Parse(text string, opts ...DecodeOption) (*Value, error) {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewParseError("document is empty", apperrors.ErrEmptyInput)
	}

	var p fastjson.Parser
	fv, err := p.Parse(text)
	if err != nil {
		return nil, apperrors.NewParseError("invalid JSON", err)
	}

	return convert(fv, &cfg)
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(text string) *Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// convert copies a fastjson tree into a Value. fastjson values are only
// valid until the parser is reused, so nothing is retained.
func convert(fv *fastjson.Value, cfg *decodeConfig) (*Value, error) {
	switch fv.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeNumber:
		return ParseNumber(string(fv.MarshalTo(nil)))
	case fastjson.TypeString:
		s := string(fv.GetStringBytes())
		if t, layout, ok := detectDate(s, cfg.dateLayouts); ok {
			return DateWithLayout(t, layout), nil
		}
		return String(s), nil
	case fastjson.TypeArray:
		elems := fv.GetArray()
		arr := &Value{kind: KindArray, arr: make([]*Value, 0, len(elems))}
		for _, e := range elems {
			cv, err := convert(e, cfg)
			if err != nil {
				return nil, err
			}
			arr.arr = append(arr.arr, cv)
		}
		return arr, nil
	case fastjson.TypeObject:
		o := fv.GetObject()
		obj := &Value{kind: KindObject, obj: make([]Member, 0, o.Len())}
		var visitErr error
		o.Visit(func(key []byte, mv *fastjson.Value) {
			if visitErr != nil {
				return
			}
			cv, err := convert(mv, cfg)
			if err != nil {
				visitErr = err
				return
			}
			obj.Set(string(key), cv)
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return obj, nil
	default:
		return nil, apperrors.NewParseError(fmt.Sprintf("unsupported JSON type %s", fv.Type()), nil)
	}
}

// ParseNumber classifies a numeric literal: a 32-bit integer if it fits,
// then a 64-bit integer, then a float64.
func ParseNumber(raw string) (*Value, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 32); err == nil {
		return Int(int32(n)), nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Long(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if errors.Is(err, strconv.ErrRange) {
		return nil, apperrors.NewParseError(fmt.Sprintf("%q is out of range for a double", raw), err)
	}
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("%q is not a number", raw), err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperrors.NewParseError(fmt.Sprintf("%q is not a finite number", raw), nil)
	}
	return Double(f), nil
}

// detectDate returns the instant s holds and the layout that matched it.
// A layout only matches when its own output parses back to the same
// instant, so an encoded document reads back as the same dates.
func detectDate(s string, layouts []string) (time.Time, string, bool) {
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		back, err := time.Parse(layout, DateWithLayout(t, layout).DateText())
		if err == nil && back.Equal(t) {
			return t, layout, true
		}
	}
	return time.Time{}, "", false
}
