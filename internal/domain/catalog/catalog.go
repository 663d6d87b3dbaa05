package catalog

import (
	"strings"

	"github.com/yanqian/ecoplot/internal/domain/plant"
)

// Catalog is the read-only reference table of species and their baseline service measurements.
type Catalog struct {
	records      []plant.Record
	byName       map[string]int
	byScientific map[string]int
}

func newCatalog(records []plant.Record) *Catalog {
	c := &Catalog{
		records:      records,
		byName:       make(map[string]int, len(records)),
		byScientific: make(map[string]int, len(records)),
	}
	for i, rec := range records {
		c.byName[rec.Name] = i
		key := scientificKey(rec.Name)
		if _, taken := c.byScientific[key]; !taken {
			c.byScientific[key] = i
		}
	}
	return c
}

// Len returns the number of species.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns a copy of every record in first-seen order.
func (c *Catalog) Records() []plant.Record {
	out := make([]plant.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Lookup finds a record by exact, case-sensitive name.
func (c *Catalog) Lookup(name string) (plant.Record, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return plant.Record{}, false
	}
	return c.records[idx], true
}

// LookupScientific finds a record ignoring case and surrounding whitespace.
func (c *Catalog) LookupScientific(name string) (plant.Record, bool) {
	idx, ok := c.byScientific[scientificKey(name)]
	if !ok {
		return plant.Record{}, false
	}
	return c.records[idx], true
}

func scientificKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
