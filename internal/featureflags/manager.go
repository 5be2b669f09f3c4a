// Package featureflags evaluates runtime switches configured through the
// FEATURE_FLAGS setting, e.g. "registration=on,comments=off,new_feed=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"maps"
	"strconv"
	"strings"
)

// Flag names understood by the application.
const (
	Registration = "registration"
	Comments     = "comments"
)

// Defaults applies to flags missing from the configured list.
var Defaults = map[string]string{
	Registration: "on",
	Comments:     "on",
}

// Manager evaluates feature flags defined in a key=value list.
type Manager struct {
	flags   map[string]string
	invalid []string
}

// NewManager parses raw on top of Defaults. Malformed pairs are kept aside
// and reported by Invalid.
func NewManager(raw string) *Manager {
	m := &Manager{flags: maps.Clone(Defaults)}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || !validValue(value) {
			m.invalid = append(m.invalid, pair)
			continue
		}
		m.flags[key] = value
	}

	return m
}

// Enabled reports whether a flag is on for userID. Values are on/true/1,
// off/false/0, or N% for a deterministic per-user rollout. Anonymous users
// (userID 0) only see percentage flags at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percentage(value)
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Invalid returns the pairs NewManager could not parse.
func (m *Manager) Invalid() []string {
	return append([]string(nil), m.invalid...)
}

// Raw returns a copy of the effective flag values.
func (m *Manager) Raw() map[string]string {
	return maps.Clone(m.flags)
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func percentage(value string) (int, bool) {
	raw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func validValue(value string) bool {
	switch value {
	case "on", "true", "1", "off", "false", "0":
		return true
	}
	_, ok := percentage(value)
	return ok
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
