// Package catalog loads the YAML dataset catalog: the list of table
// families to harmonize and publish, grouped by survey component category.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset is one publishable harmonized dataset.
type Dataset struct {
	// Name is the published dataset name and the object-store key stem.
	Name string `yaml:"name"`
	// Family is the upstream table family merged across cycles. Defaults
	// to Name when empty.
	Family string `yaml:"family"`
	// Category groups datasets for batching, e.g. dietary, examination.
	Category string `yaml:"category"`
	// Columns optionally restricts the merge to these columns.
	Columns []string `yaml:"columns"`
}

// Catalog is the full ordered dataset list.
type Catalog struct {
	Datasets []Dataset `yaml:"datasets"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	for i := range c.Datasets {
		if c.Datasets[i].Family == "" {
			c.Datasets[i].Family = c.Datasets[i].Name
		}
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets defined")
	}
	seen := make(map[string]bool, len(c.Datasets))
	for i, d := range c.Datasets {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("dataset %d: missing name", i)
		}
		if strings.TrimSpace(d.Category) == "" {
			return fmt.Errorf("dataset %q: missing category", d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("dataset %q: duplicate name", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Categories returns category names in order of first appearance. This is
// the fixed order batching preserves.
func (c *Catalog) Categories() []string {
	var order []string
	seen := make(map[string]bool)
	for _, d := range c.Datasets {
		if !seen[d.Category] {
			seen[d.Category] = true
			order = append(order, d.Category)
		}
	}
	return order
}

// Select returns the datasets whose names are in the given set, preserving
// catalog order. Unknown names produce an error rather than a silent skip.
func (c *Catalog) Select(names []string) ([]Dataset, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	var out []Dataset
	for _, d := range c.Datasets {
		if want[d.Name] {
			out = append(out, d)
			delete(want, d.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		return nil, fmt.Errorf("unknown datasets: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
