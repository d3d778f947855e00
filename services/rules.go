package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RuleSet holds the wildcard pattern tables the settings factory consults.
// Only '*' is special in a pattern; it matches any run of characters.
type RuleSet struct {
	CustomRankingKeys                    []string `yaml:"customRankingKeys"`
	UnsearchableAttributesKeys           []string `yaml:"unsearchableAttributesKeys"`
	AttributesForFacetingKeys            []string `yaml:"attributesForFacetingKeys"`
	UnretrievableAttributes              []string `yaml:"unretrievableAttributes"`
	UnsearchableAttributesValues         []string `yaml:"unsearchableAttributesValues"`
	DisableTypoToleranceOnAttributesKeys []string `yaml:"disableTypoToleranceOnAttributesKeys"`
}

func DefaultRuleSet() RuleSet {
	return RuleSet{
		CustomRankingKeys: []string{
			"id",
			"id_*",
			"*_id",
		},
		UnsearchableAttributesKeys: []string{
			"*image*",
			"*url*",
			"*link*",
			"*password*",
			"*token*",
			"*hash*",
		},
		AttributesForFacetingKeys: []string{
			"*category*",
			"*list*",
			"*country*",
			"*city*",
			"*type*",
		},
		UnretrievableAttributes: []string{
			"*password*",
			"*token*",
			"*secret*",
		},
		UnsearchableAttributesValues: []string{
			"http://*",
			"https://*",
		},
		DisableTypoToleranceOnAttributesKeys: []string{
			"id",
			"id_*",
			"*_id",
			"*code*",
			"*sku*",
			"*reference*",
		},
	}
}

// Extend appends the patterns of extra to every table of r.
func (r RuleSet) Extend(extra RuleSet) RuleSet {
	return RuleSet{
		CustomRankingKeys:                    concat(r.CustomRankingKeys, extra.CustomRankingKeys),
		UnsearchableAttributesKeys:           concat(r.UnsearchableAttributesKeys, extra.UnsearchableAttributesKeys),
		AttributesForFacetingKeys:            concat(r.AttributesForFacetingKeys, extra.AttributesForFacetingKeys),
		UnretrievableAttributes:              concat(r.UnretrievableAttributes, extra.UnretrievableAttributes),
		UnsearchableAttributesValues:         concat(r.UnsearchableAttributesValues, extra.UnsearchableAttributesValues),
		DisableTypoToleranceOnAttributesKeys: concat(r.DisableTypoToleranceOnAttributesKeys, extra.DisableTypoToleranceOnAttributesKeys),
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// LoadRuleSet reads extra patterns from a YAML file and appends them to the
// default tables. An empty filename yields the defaults.
func LoadRuleSet(filename string) (RuleSet, error) {
	defaults := DefaultRuleSet()
	if filename == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return RuleSet{}, errors.Wrap(err, "error reading rules file")
	}

	var extra RuleSet
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return RuleSet{}, errors.Wrapf(err, "error parsing rules file %s", filename)
	}
	return defaults.Extend(extra), nil
}

// PatternList is a compiled table. It matches a string when any of its
// patterns matches the whole string.
type PatternList struct {
	globs []glob.Glob
}

func CompilePatternList(patterns []string) (PatternList, error) {
	list := PatternList{globs: make([]glob.Glob, 0, len(patterns))}
	for _, pattern := range patterns {
		g, err := glob.Compile(quotePattern(pattern), '\n')
		if err != nil {
			return PatternList{}, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
		list.globs = append(list.globs, g)
	}
	return list, nil
}

// quotePattern escapes every glob meta character except '*'. Runs of '*'
// collapse to one so the wildcard never becomes "**", which would match
// across the '\n' separator.
func quotePattern(pattern string) string {
	parts := strings.Split(pattern, "*")
	quoted := make([]string, 0, len(parts))
	for i, part := range parts {
		if part == "" && i > 0 && i < len(parts)-1 {
			continue
		}
		quoted = append(quoted, glob.QuoteMeta(part))
	}
	return strings.Join(quoted, "*")
}

func (l PatternList) Match(s string) bool {
	for _, g := range l.globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// MatchValue matches a sample value. Scalars are rendered the way they would
// be printed; nil, maps and slices never match.
func (l PatternList) MatchValue(value interface{}) bool {
	s, ok := valueString(value)
	if !ok {
		return false
	}
	return l.Match(s)
}

func valueString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "1", true
		}
		return "", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}
