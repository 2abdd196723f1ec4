package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cached read: a resource name followed by its parameters, e.g.
//
//	Key{"search-songs", "believer", 1, 20}
//
// Keys compare structurally. Two keys with equal elements share one cache entry no matter how they
// were built, and numeric elements compare by value (int 2 and float64 2 are the same element).
type Key []any

// String returns the canonical encoding used as the entry identity.
func (k Key) String() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

// Equal reports whether k and other identify the same entry.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// HasPrefix reports whether k starts with every element of prefix.
//
// Key{"favorites", "7"} has prefix Key{"favorites"} and Key{"favorites", "7"}, not Key{"favorites", "8"}.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if part(k[i]) != part(prefix[i]) {
			return false
		}
	}
	return true
}

func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, v := range k {
		out[i] = part(v)
	}
	return out
}

func part(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(data)
}
