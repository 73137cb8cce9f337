// Package raw reads prefixed environment variables without logging, so the
// logger can configure itself from the environment. config builds on it.
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a namespaced view over environment variables, e.g. "LOG_"
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key composes the fully-qualified env var name
func (c Conf) Key(k string) string { return c.prefix + k }

// Lookup returns the trimmed value and whether it is non-empty
func (c Conf) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.Key(key)))
	return v, v != ""
}

// Get returns the value or def when unset
func (c Conf) Get(key, def string) string {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// GetBool treats 1, true and yes as true, any other set value as false
func (c Conf) GetBool(key string, def bool) bool {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt returns a non-negative integer or def when unset or malformed
func (c Conf) GetInt(key string, def int) int {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
