// Package admin describes how staff listings of blog content are built:
// which columns show, which fields are searchable, and which filters apply.
// The configuration lives in the embedded admin.yml.
package admin

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed admin.yml
var defaultConfig []byte

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Relation resolves a foreign key column to a human readable column of the
// referenced table.
type Relation struct {
	Table      string `yaml:"table"`
	Column     string `yaml:"column"`
	ForeignKey string `yaml:"foreign_key"`
}

// ModelAdmin is the listing configuration of one model.
type ModelAdmin struct {
	Name               string              `yaml:"-" json:"name"`
	Table              string              `yaml:"table" json:"-"`
	ListDisplay        []string            `yaml:"list_display" json:"list_display"`
	SearchFields       []string            `yaml:"search_fields" json:"search_fields"`
	ListFilter         []string            `yaml:"list_filter" json:"list_filter"`
	BooleanFields      []string            `yaml:"boolean_fields" json:"-"`
	PrepopulatedFields map[string][]string `yaml:"prepopulated_fields" json:"prepopulated_fields,omitempty"`
	Ordering           []string            `yaml:"ordering" json:"ordering"`
}

// Site is the whole admin configuration.
type Site struct {
	EmptyValueDisplay string                 `yaml:"empty_value_display"`
	Relations         map[string]Relation    `yaml:"relations"`
	Models            map[string]*ModelAdmin `yaml:"models"`
}

// Load parses the embedded configuration.
func Load() (*Site, error) {
	return Parse(defaultConfig)
}

// Parse decodes and checks a configuration document. Every name that ends
// up in SQL must be a plain lower-case identifier.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parse admin config: %w", err)
	}
	if len(site.Models) == 0 {
		return nil, fmt.Errorf("admin config declares no models")
	}

	for name, rel := range site.Relations {
		for _, id := range []string{name, rel.Table, rel.Column, rel.ForeignKey} {
			if !identifier.MatchString(id) {
				return nil, fmt.Errorf("relation %q: invalid identifier %q", name, id)
			}
		}
	}

	for name, m := range site.Models {
		m.Name = name
		if !identifier.MatchString(m.Table) {
			return nil, fmt.Errorf("model %q: invalid table %q", name, m.Table)
		}
		if len(m.ListDisplay) == 0 {
			return nil, fmt.Errorf("model %q: list_display is empty", name)
		}
		fields := concat(m.ListDisplay, m.ListFilter, m.BooleanFields)
		for _, f := range fields {
			if !identifier.MatchString(f) {
				return nil, fmt.Errorf("model %q: invalid field %q", name, f)
			}
		}
		for _, f := range m.SearchFields {
			rel, col, joined := strings.Cut(f, "__")
			if !identifier.MatchString(rel) || (joined && !identifier.MatchString(col)) {
				return nil, fmt.Errorf("model %q: invalid search field %q", name, f)
			}
			if _, ok := site.Relations[rel]; joined && !ok {
				return nil, fmt.Errorf("model %q: search field %q uses unknown relation %q", name, f, rel)
			}
		}
		for target, sources := range m.PrepopulatedFields {
			if !identifier.MatchString(target) || len(sources) == 0 {
				return nil, fmt.Errorf("model %q: invalid prepopulated field %q", name, target)
			}
		}
		for _, o := range m.Ordering {
			if !identifier.MatchString(strings.TrimPrefix(o, "-")) {
				return nil, fmt.Errorf("model %q: invalid ordering %q", name, o)
			}
		}
		if len(m.Ordering) == 0 {
			m.Ordering = []string{"-id"}
		}
	}
	return &site, nil
}

// Model returns the configuration registered under name.
func (s *Site) Model(name string) (*ModelAdmin, bool) {
	m, ok := s.Models[name]
	return m, ok
}

// Names lists the registered models in alphabetical order.
func (s *Site) Names() []string {
	names := make([]string, 0, len(s.Models))
	for name := range s.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prepopulate fills field from its configured source values, the way the
// category slug follows its title. It returns "" when field has no rule.
func (m *ModelAdmin) Prepopulate(field string, values map[string]string) string {
	sources, ok := m.PrepopulatedFields[field]
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, values[src])
	}
	return Slugify(strings.Join(parts, " "))
}

func (m *ModelAdmin) isBoolean(field string) bool {
	for _, f := range m.BooleanFields {
		if f == field {
			return true
		}
	}
	return false
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
