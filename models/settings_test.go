package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Equal(t *testing.T) {
	a := Settings{SearchableAttributes: []string{"a", "b"}, UnretrievableAttributes: []string{}}
	b := Settings{SearchableAttributes: []string{"a", "b"}}
	assert.True(t, a.Equal(b))

	b.SearchableAttributes = []string{"b", "a"}
	assert.False(t, a.Equal(b))

	b = a
	b.CustomRanking = []string{"desc(id)"}
	assert.False(t, a.Equal(b))
}

func TestSettings_JSONOmitsEmptyOptionalLists(t *testing.T) {
	b, err := json.Marshal(Settings{
		SearchableAttributes:    []string{"title"},
		CustomRanking:           []string{"desc(id)"},
		UnretrievableAttributes: []string{},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"searchableAttributes":["title"],"customRanking":["desc(id)"],"unretrievableAttributes":[]}`, string(b))
}

func TestSettings_Roles(t *testing.T) {
	s := Settings{
		SearchableAttributes:             []string{"title"},
		AttributesForFaceting:            []string{"category"},
		DisableTypoToleranceOnAttributes: []string{"sku"},
		UnretrievableAttributes:          []string{"password"},
		CustomRanking:                    []string{"desc(id)", "asc(price)", "bogus", "desc()"},
	}
	assert.True(t, s.IsSearchable("title"))
	assert.False(t, s.IsSearchable("category"))
	assert.True(t, s.IsFacet("category"))
	assert.True(t, s.IsTypoToleranceDisabled("sku"))
	assert.True(t, s.IsUnretrievable("password"))
	assert.Equal(t, []RankingRule{{Attribute: "id", Order: "desc"}, {Attribute: "price", Order: "asc"}}, s.RankingAttributes())
}

func TestParseRankingRule(t *testing.T) {
	rule, ok := ParseRankingRule("desc(created_at)")
	require.True(t, ok)
	assert.Equal(t, RankingRule{Attribute: "created_at", Order: "desc"}, rule)
	assert.Equal(t, "desc(created_at)", rule.String())

	for _, entry := range []string{"", "desc", "desc()", "desc(x", "up(x)", "descx)"} {
		_, ok := ParseRankingRule(entry)
		assert.False(t, ok, entry)
	}
}

func TestIndexInfoFor(t *testing.T) {
	assert.Equal(t, IndexInfo{
		IndexName:  "products",
		ReadAlias:  "products_ReadAlias",
		WriteAlias: "products_WriteAlias",
	}, IndexInfoFor("products"))
}

func TestFieldMapping_HasKeyword(t *testing.T) {
	assert.True(t, FieldMapping{DataType: []string{"text", "keyword"}}.HasKeyword())
	assert.False(t, FieldMapping{DataType: []string{"keyword"}}.HasKeyword())
	assert.False(t, FieldMapping{}.HasKeyword())
}
