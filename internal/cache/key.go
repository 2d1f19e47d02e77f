package cache

import (
	"fmt"
	"strings"
)

// Key identifies one cached result set. Keys built from structurally equal
// parts compare equal, regardless of where they were constructed.
type Key string

// NewKey builds a key from an ordered tuple of primitive parts, e.g.
// NewKey("directMessages", 42).
func NewKey(parts ...any) Key {
	ss := make([]string, len(parts))
	for i, p := range parts {
		ss[i] = fmt.Sprintf("%v", p)
	}
	return Key(strings.Join(ss, "/"))
}

func (k Key) String() string {
	return string(k)
}
