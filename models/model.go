package models

// Model is a sample instance of a data model. Attributes is everything the
// instance exposes; Searchable is the subset sent to the search engine.
// Only keys present in both take part in detection.
type Model struct {
	Name       string     `json:"name" yaml:"name"`
	Index      string     `json:"index,omitempty" yaml:"index,omitempty"`
	Attributes Attributes `json:"attributes" yaml:"attributes"`
	Searchable Attributes `json:"searchable,omitempty" yaml:"searchable,omitempty"`
}

// DetectableAttributes returns the attributes that are also searchable. A
// model without an explicit searchable array exposes all its attributes.
func (m Model) DetectableAttributes() Attributes {
	if m.Searchable == nil {
		return m.Attributes
	}
	return m.Attributes.Intersect(m.Searchable)
}

// IndexName falls back to the model name when no index is set.
func (m Model) IndexName() string {
	if m.Index != "" {
		return m.Index
	}
	return m.Name
}
