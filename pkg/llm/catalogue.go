package llm

import "fmt"

// Catalogue is the fixed set of model ids a session may select.
// Ids are passed to the provider unchanged unless an alias is registered.
type Catalogue struct {
	ids     []string
	aliases map[string]string
}

// NewCatalogue keeps the order of ids; duplicates are dropped
func NewCatalogue(ids []string, aliases map[string]string) *Catalogue {
	seen := make(map[string]struct{}, len(ids))
	c := &Catalogue{aliases: map[string]string{}}
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		c.ids = append(c.ids, id)
	}
	for k, v := range aliases {
		c.aliases[k] = v
	}
	return c
}

// IDs returns the selectable model ids in display order
func (c *Catalogue) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Supports reports whether id is selectable
func (c *Catalogue) Supports(id string) bool {
	for _, v := range c.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Resolve maps a catalogue id to the provider's model name
func (c *Catalogue) Resolve(id string) (string, error) {
	if !c.Supports(id) {
		return "", fmt.Errorf("model %q is not in the catalogue", id)
	}
	if alias, ok := c.aliases[id]; ok {
		return alias, nil
	}
	return id, nil
}
