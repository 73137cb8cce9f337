// Package config reads typed settings from prefixed environment variables.
// Must* panic through the logger on a missing or malformed value. May* return
// the default when unset; each says how it treats a malformed value.
package config

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"stridekit/internal/platform/config/raw"
	"stridekit/internal/platform/logger"
)

// Conf is a namespaced view over environment variables, e.g. Prefix("STRIDEKIT_")
type Conf struct{ env raw.Conf }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{env: raw.New()} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{env: c.env.Prefix(p)} }

func (c Conf) key(k string) string { return c.env.Key(k) }

func (c Conf) invalid(key, value, want string) {
	logger.Get().Panic().Str("key", c.key(key)).Str("value", value).Msg("invalid " + want)
}

// MustString panics if key is missing or empty
func (c Conf) MustString(key string) string {
	v, ok := c.env.Lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MustDuration panics if key is missing or not a duration such as 250ms or 2s
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		c.invalid(key, s, "duration")
	}
	return d
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string { return c.env.Get(key, def) }

// MayInt returns the value or def if missing/empty; warns and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
		return def
	}
	return v
}

// MayBool returns the value or def if missing/empty; warns and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
		return def
	}
	return v
}

// MayDuration returns the value or def if missing/empty; warns and returns def if invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
		return def
	}
	return d
}

// MayCSV splits a comma-separated value, dropping blanks; def if nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value, or def if empty; panics unless it is one of
// allowed, compared case-insensitively
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

// MayURL returns def if unset; a set value must be an absolute http(s) URL or it panics
func (c Conf) MayURL(key, def string) string {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.invalid(key, s, "http(s) URL")
	}
	return s
}

// MayWeekday returns def if unset; a set value must be 0 (Sunday) to 6 (Saturday) or it panics
func (c Conf) MayWeekday(key string, def int) int {
	s, ok := c.env.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 6 {
		c.invalid(key, s, "weekday, expected 0..6")
	}
	return n
}
