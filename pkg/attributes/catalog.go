// Package attributes indexes the attribute metadata sheet describing the
// demographic columns: what each code means and which codes stand for
// unknown values.
package attributes

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"segkit/pkg/data"
	"segkit/pkg/dataprep"
	"segkit/pkg/frame"
)

// Metadata column names.
const (
	ColAttribute   = "Attribute"
	ColDescription = "Description"
	ColValue       = "Value"
	ColMeaning     = "Meaning"
)

// Entry is one (attribute, value) row of the metadata.
type Entry struct {
	Attribute   string
	Description string
	Value       frame.Value // int for single codes, string for ranges and labels
	Meaning     string
	Missing     bool // Meaning mentions "unknown"
}

// Catalog is the cleaned attribute metadata.
type Catalog struct {
	entries []Entry
}

// NewCatalog builds a catalog from a metadata frame with Attribute, Value
// and Meaning columns (Description is optional). Attribute and Description
// are forward-filled, since the sheet only names an attribute on its first
// row. Values that parse as integers become int.
func NewCatalog(f *frame.Frame) (*Catalog, error) {
	attrs, err := f.Column(ColAttribute)
	if err != nil {
		return nil, err
	}
	vals, err := f.Column(ColValue)
	if err != nil {
		return nil, err
	}
	meanings, err := f.Column(ColMeaning)
	if err != nil {
		return nil, err
	}
	descs, _ := f.Column(ColDescription)

	c := &Catalog{entries: make([]Entry, 0, len(attrs))}
	var attr, desc string
	for i := range attrs {
		if s, ok := text(attrs[i]); ok {
			attr = s
		}
		if descs != nil {
			if s, ok := text(descs[i]); ok {
				desc = s
			}
		}
		if attr == "" {
			return nil, fmt.Errorf("attributes: row %d has no attribute", i)
		}
		meaning, _ := text(meanings[i])
		c.entries = append(c.entries, Entry{
			Attribute:   attr,
			Description: desc,
			Value:       normalize(vals[i]),
			Meaning:     meaning,
			Missing:     strings.Contains(meaning, "unknown"),
		})
	}
	return c, nil
}

// LoadCatalog reads a metadata CSV and builds its catalog.
func LoadCatalog(path string, opts ...data.Option) (*Catalog, error) {
	opts = append([]data.Option{data.WithStringColumns(ColValue)}, opts...)
	f, err := data.ReadCSVFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return NewCatalog(f)
}

func text(v frame.Value) (string, bool) {
	if frame.IsMissing(v) {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	return s, s != ""
}

func normalize(v frame.Value) frame.Value {
	switch x := v.(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
		return x
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
	case int64:
		return int(x)
	}
	return v
}

// Entries returns every entry in sheet order.
func (c *Catalog) Entries() []Entry { return append([]Entry(nil), c.entries...) }

// Attributes returns the distinct attribute names containing substr.
func (c *Catalog) Attributes(substr string) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range c.entries {
		if !seen[e.Attribute] && strings.Contains(e.Attribute, substr) {
			seen[e.Attribute] = true
			out = append(out, e.Attribute)
		}
	}
	return out
}

// Info returns the entries of one attribute.
func (c *Catalog) Info(attr string) []Entry {
	return c.filter(func(e Entry) bool { return e.Attribute == attr })
}

// Categorical returns entries whose value is a label rather than a code:
// strings other than the "-1, 0" and "-1, 9" unknown ranges and the "…"
// continuation marker.
func (c *Catalog) Categorical() []Entry {
	return c.filter(func(e Entry) bool {
		s, ok := e.Value.(string)
		return ok && s != "-1, 0" && s != "-1, 9" && s != "…"
	})
}

// Binary returns the known-value entries of attributes that have exactly
// two known values.
func (c *Catalog) Binary() []Entry {
	known := map[string]int{}
	for _, e := range c.entries {
		if !e.Missing {
			known[e.Attribute]++
		}
	}
	return c.filter(func(e Entry) bool { return !e.Missing && known[e.Attribute] == 2 })
}

// TypeOrClass returns entries of attributes that name a type or class:
// TYP or KLASSE in the attribute, typ or class in the description.
func (c *Catalog) TypeOrClass() []Entry {
	return c.filter(func(e Entry) bool {
		return strings.Contains(e.Attribute, "TYP") || strings.Contains(e.Attribute, "KLASSE") ||
			strings.Contains(e.Description, "typ") || strings.Contains(e.Description, "class")
	})
}

// MissingCodes returns, per attribute, the value codes meaning unknown.
func (c *Catalog) MissingCodes() (map[string][]int, error) {
	out := map[string][]int{}
	for _, e := range c.entries {
		if !e.Missing {
			continue
		}
		codes, err := dataprep.ParseMissingCodes(e.Value)
		if err != nil {
			return nil, fmt.Errorf("attributes: %s: %w", e.Attribute, err)
		}
		for _, code := range codes {
			if !slices.Contains(out[e.Attribute], code) {
				out[e.Attribute] = append(out[e.Attribute], code)
			}
		}
	}
	return out, nil
}

// FitMissing records a missing-code remap on t for every attribute with
// unknown codes that is a column of t's frame. It returns those columns in
// catalog order.
func (c *Catalog) FitMissing(t *dataprep.Tracker) ([]string, error) {
	codes, err := c.MissingCodes()
	if err != nil {
		return nil, err
	}
	var fitted []string
	for _, attr := range c.Attributes("") {
		cs, ok := codes[attr]
		if !ok || !t.Frame().Has(attr) {
			continue
		}
		if err := t.Fit(attr, dataprep.MissingCodesStep(cs)); err != nil {
			return fitted, err
		}
		fitted = append(fitted, attr)
	}
	return fitted, nil
}

func (c *Catalog) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
