package pathmap

import (
	"strings"

	"substation/internal/config"
)

// Rule rewrites one stored path prefix to a local mount point.
type Rule struct {
	From string
	To   string
}

// Mapper translates media paths as stored upstream into paths valid on this
// host. The zero value maps every path to itself.
type Mapper struct {
	rules []Rule
}

// New builds a Mapper from explicit rules.
func New(rules ...Rule) *Mapper {
	kept := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		from := strings.TrimSpace(rule.From)
		to := strings.TrimSpace(rule.To)
		if from == "" || to == "" {
			continue
		}
		kept = append(kept, Rule{From: from, To: to})
	}
	return &Mapper{rules: kept}
}

// FromConfig builds a Mapper from the configured path mappings.
func FromConfig(mappings []config.PathMapping) *Mapper {
	rules := make([]Rule, 0, len(mappings))
	for _, mapping := range mappings {
		rules = append(rules, Rule{From: mapping.From, To: mapping.To})
	}
	return New(rules...)
}

// Map rewrites path using the longest matching From prefix. Paths no rule
// matches are returned unchanged.
func (m *Mapper) Map(path string) string {
	if m == nil || path == "" {
		return path
	}
	best := -1
	bestLen := 0
	for i, rule := range m.rules {
		if !matchesPrefix(path, rule.From) {
			continue
		}
		if len(rule.From) > bestLen {
			best = i
			bestLen = len(rule.From)
		}
	}
	if best < 0 {
		return path
	}
	rule := m.rules[best]
	return rule.To + path[len(rule.From):]
}

// matchesPrefix requires the prefix to end on a path boundary so that
// "/data/media" does not capture "/data/mediax".
func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	if strings.HasSuffix(prefix, "/") || strings.HasSuffix(prefix, "\\") {
		return true
	}
	next := path[len(prefix)]
	return next == '/' || next == '\\'
}
