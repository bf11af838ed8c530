// Package catalog holds the static interview question catalog: an ordered
// list of sections, each an ordered list of question strings. It is loaded
// once from an embedded YAML file at startup and immutable afterwards.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed sections.yaml
var catalogFile embed.FS

type sectionSpec struct {
	Name      string   `yaml:"name"`
	Questions []string `yaml:"questions"`
}

type catalogSpec struct {
	Sections []sectionSpec `yaml:"sections"`
}

// Catalog is an ordered, immutable lookup table of interview sections.
// Section order is kept explicitly (not via map iteration) because it
// defines the interview progression order.
type Catalog struct {
	order     []string
	questions map[string][]string
}

// Load parses the embedded section file into a Catalog.
func Load() (*Catalog, error) {
	data, err := catalogFile.ReadFile("sections.yaml")
	if err != nil {
		return nil, fmt.Errorf("read section catalog: %w", err)
	}

	var spec catalogSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse section catalog: %w", err)
	}

	if len(spec.Sections) == 0 {
		return nil, fmt.Errorf("section catalog is empty")
	}

	c := &Catalog{
		questions: make(map[string][]string, len(spec.Sections)),
	}
	for _, s := range spec.Sections {
		if s.Name == "" {
			return nil, fmt.Errorf("section catalog contains an unnamed section")
		}
		if _, dup := c.questions[s.Name]; dup {
			return nil, fmt.Errorf("duplicate section %q in catalog", s.Name)
		}
		if len(s.Questions) == 0 {
			return nil, fmt.Errorf("section %q has no questions", s.Name)
		}
		c.order = append(c.order, s.Name)
		c.questions[s.Name] = s.Questions
	}

	return c, nil
}

// HasSection reports whether the section exists in the catalog.
func (c *Catalog) HasSection(section string) bool {
	_, ok := c.questions[section]
	return ok
}

// Questions returns the ordered question list for a section.
func (c *Catalog) Questions(section string) ([]string, bool) {
	qs, ok := c.questions[section]
	return qs, ok
}

// Question returns the question at (section, index). The second return is
// false when the section is unknown or the index is out of range.
func (c *Catalog) Question(section string, index int) (string, bool) {
	qs, ok := c.questions[section]
	if !ok || index < 0 || index >= len(qs) {
		return "", false
	}
	return qs[index], true
}

// FirstSection returns the first section in progression order.
func (c *Catalog) FirstSection() string {
	return c.order[0]
}

// NextSection returns the section following the given one in progression
// order. The second return is false when the given section is the last one
// or unknown.
func (c *Catalog) NextSection(section string) (string, bool) {
	for i, name := range c.order {
		if name == section {
			if i+1 < len(c.order) {
				return c.order[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// SectionCount returns the number of sections.
func (c *Catalog) SectionCount() int {
	return len(c.order)
}

// Sections returns the section names in progression order.
func (c *Catalog) Sections() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
