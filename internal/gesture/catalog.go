package gesture

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// NoDescription is shown for labels that have no catalog entry.
const NoDescription = "No description available"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Entry is one catalog row.
type Entry struct {
	Label       Label  `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// Catalog maps labels to human-readable descriptions. It is independent of
// the rule table and only used for presentation.
type Catalog struct {
	descriptions map[Label]string
}

// NewCatalog builds a catalog from entries. Later entries override earlier
// ones with the same label.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{descriptions: make(map[Label]string, len(entries))}
	for _, e := range entries {
		c.descriptions[e.Label] = e.Description
	}
	return c
}

// ParseCatalog decodes a YAML mapping of label to description.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for label, desc := range raw {
		entries = append(entries, Entry{Label: Label(label), Description: desc})
	}
	return NewCatalog(entries), nil
}

// DefaultCatalog returns the built-in descriptions for all 18 mudras.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Describe returns the description for label and whether one exists.
func (c *Catalog) Describe(label Label) (string, bool) {
	if c == nil {
		return "", false
	}
	d, ok := c.descriptions[label]
	return d, ok
}

// Description returns the description for label, or NoDescription.
func (c *Catalog) Description(label Label) string {
	if d, ok := c.Describe(label); ok {
		return d
	}
	return NoDescription
}

// Entries returns all entries sorted by label.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, 0, len(c.descriptions))
	for l, d := range c.descriptions {
		out = append(out, Entry{Label: l, Description: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.descriptions)
}
