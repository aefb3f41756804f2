package jsonutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases where
// LLMs return numbers or booleans instead of strings. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return StringOf(v)
}

// FlexibleStringPtr is FlexibleStringValue that keeps null/absent distinct
// from the empty string.
func FlexibleStringPtr(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	s := FlexibleStringValue(raw)
	return &s
}

// FlexibleFloatPtr converts a json.RawMessage holding a number or a numeric
// string ("8", " 7.5 ") to a float. Anything else yields nil.
func FlexibleFloatPtr(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return FloatPtrOf(v)
}

// StringOf renders a decoded JSON value as a string. nil becomes "".
func StringOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// FloatPtrOf converts a decoded JSON value to a float when it is a number or
// a numeric string. NaN and infinities are not numbers here since they cannot
// be encoded back to JSON.
func FloatPtrOf(v any) *float64 {
	f := floatOf(v)
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return f
}

func floatOf(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// StringPtrOf is StringOf that maps nil to nil.
func StringPtrOf(v any) *string {
	if v == nil {
		return nil
	}
	s := StringOf(v)
	return &s
}
