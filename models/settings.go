package models

import "slices"

// Settings is the set of index settings inferred for a model. The optional
// lists are nil when nothing was detected and are then left out of the
// encoded document.
type Settings struct {
	SearchableAttributes             []string `json:"searchableAttributes" yaml:"searchableAttributes"`
	AttributesForFaceting            []string `json:"attributesForFaceting,omitempty" yaml:"attributesForFaceting,omitempty"`
	CustomRanking                    []string `json:"customRanking,omitempty" yaml:"customRanking,omitempty"`
	DisableTypoToleranceOnAttributes []string `json:"disableTypoToleranceOnAttributes,omitempty" yaml:"disableTypoToleranceOnAttributes,omitempty"`
	UnretrievableAttributes          []string `json:"unretrievableAttributes" yaml:"unretrievableAttributes"`
}

// Equal compares two settings documents. A nil list and an empty list are
// the same thing.
func (s Settings) Equal(other Settings) bool {
	return slices.Equal(s.SearchableAttributes, other.SearchableAttributes) &&
		slices.Equal(s.AttributesForFaceting, other.AttributesForFaceting) &&
		slices.Equal(s.CustomRanking, other.CustomRanking) &&
		slices.Equal(s.DisableTypoToleranceOnAttributes, other.DisableTypoToleranceOnAttributes) &&
		slices.Equal(s.UnretrievableAttributes, other.UnretrievableAttributes)
}

func (s Settings) IsSearchable(attribute string) bool {
	return slices.Contains(s.SearchableAttributes, attribute)
}

func (s Settings) IsFacet(attribute string) bool {
	return slices.Contains(s.AttributesForFaceting, attribute)
}

func (s Settings) IsTypoToleranceDisabled(attribute string) bool {
	return slices.Contains(s.DisableTypoToleranceOnAttributes, attribute)
}

func (s Settings) IsUnretrievable(attribute string) bool {
	return slices.Contains(s.UnretrievableAttributes, attribute)
}

// RankingAttributes returns the attribute names wrapped by the custom ranking
// entries, e.g. "desc(id)" gives "id".
func (s Settings) RankingAttributes() []RankingRule {
	rules := make([]RankingRule, 0, len(s.CustomRanking))
	for _, entry := range s.CustomRanking {
		if rule, ok := ParseRankingRule(entry); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

// RankingRule is a parsed custom ranking entry.
type RankingRule struct {
	Attribute string
	Order     string
}

func (r RankingRule) String() string {
	return r.Order + "(" + r.Attribute + ")"
}

// ParseRankingRule parses "asc(attr)" or "desc(attr)".
func ParseRankingRule(entry string) (RankingRule, bool) {
	for _, order := range []string{"asc", "desc"} {
		prefix := order + "("
		if len(entry) > len(prefix)+1 && entry[:len(prefix)] == prefix && entry[len(entry)-1] == ')' {
			return RankingRule{Attribute: entry[len(prefix) : len(entry)-1], Order: order}, true
		}
	}
	return RankingRule{}, false
}
