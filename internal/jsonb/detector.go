package jsonb

import (
	"strings"

	"github.com/valyala/fastjson"
)

// IsJSON checks if a string value is a complete JSON document
func IsJSON(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return fastjson.Validate(value) == nil
}

// IsContainerText reports whether text is a JSON object or array. Only
// containers can be opened in the viewer.
func IsContainerText(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || (value[0] != '{' && value[0] != '[') {
		return false
	}
	return IsJSON(value)
}

// Type returns the type name of a JSON value (object, array, string, number,
// boolean, date, null). value may be a *Value or JSON text.
func Type(value interface{}) string {
	var v *Value
	switch t := value.(type) {
	case nil:
		return "null"
	case *Value:
		v = t
	case string:
		parsed, err := Parse(t)
		if err != nil {
			return "unknown"
		}
		v = parsed
	case []byte:
		parsed, err := Parse(string(t))
		if err != nil {
			return "unknown"
		}
		v = parsed
	default:
		return "unknown"
	}

	switch v.Kind() {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindInt, KindLong, KindDouble:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}
