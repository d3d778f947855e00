package models

type filterUnit struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// filter is a collection of filterUnits
type Filter []filterUnit

// NewFilterUnit is used by callers outside the package that need to build a
// Filter programmatically.
func NewFilterUnit(field string, values ...string) filterUnit {
	return filterUnit{Field: field, Values: values}
}

// TODO: create advance filters by parsing string
type SearchReq struct {
	IndexName    string `json:"-"`
	SearchString string `json:"search_string"`
	PageSize     uint32 `json:"page_size"`
	Cursor       uint32 `json:"cursor"`
	Filter       Filter `json:"filter"`
}

// FieldMapping defines the mapping for a field in the query
type FieldMapping struct {
	DataType []string // The data type of the field, sub-fields included
}

// HasKeyword reports whether the field carries a keyword sub-field next to
// its main type.
func (f FieldMapping) HasKeyword() bool {
	if len(f.DataType) < 2 {
		return false
	}
	for _, dataType := range f.DataType[1:] {
		if dataType == "keyword" {
			return true
		}
	}
	return false
}
