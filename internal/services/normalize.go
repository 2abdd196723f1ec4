package services

import (
	"math"
	"strconv"
	"strings"
)

// Payload helpers. The API is loosely typed (ids arrive as numbers or strings, lists may be null),
// so every field is read through one of these with a safe default.

func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asOptString(v any) *string {
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

// firstString returns the first non-empty string among keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asFloatOr(v any, def float64) float64 {
	if f, ok := asFloat(v); ok {
		return f
	}
	return def
}

func asOptFloat(v any) *float64 {
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}

func asIntOr(v any, def int) int {
	if f, ok := asFloat(v); ok {
		return int(f)
	}
	return def
}

func asOptInt(v any) *int {
	if f, ok := asFloat(v); ok {
		i := int(f)
		return &i
	}
	return nil
}

// asBool accepts JSON booleans plus the 0/1 and "true"/"1" encodings the API uses for flags.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes":
			return true
		}
	}
	return false
}

func asStrings(v any) []string {
	items := asSlice(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(asString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// mapSlice normalizes every object in a list-shaped field.
func mapSlice[T any](v any, fn func(map[string]any) T) []T {
	items := asSlice(v)
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(asObject(item)))
	}
	return out
}
