package services

import (
	"github.com/pkg/errors"

	"search-settings-service/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 1000
)

// BuildSearchQuery builds the search body for req from the settings of the
// index and its field mappings.
func BuildSearchQuery(settings models.Settings, fields map[string]models.FieldMapping, req models.SearchReq) (map[string]interface{}, error) {
	size := req.PageSize
	if size == 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	boolQuery := make(map[string]interface{})
	if req.SearchString != "" {
		should := generateSearchClauses(settings, fields, req.SearchString)
		if len(should) == 0 {
			// nothing searchable: the query cannot match anything
			boolQuery["must_not"] = map[string]interface{}{"match_all": map[string]interface{}{}}
		} else {
			boolQuery["should"] = should
			boolQuery["minimum_should_match"] = 1
		}
	} else {
		boolQuery["must"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	if len(req.Filter) > 0 {
		filter, err := generateFilter(settings, fields, req.Filter)
		if err != nil {
			return nil, err
		}
		boolQuery["filter"] = filter
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  req.Cursor,
		"size":  size,
	}
	if sort := generateSort(settings, fields); sort != nil {
		query["sort"] = sort
	}
	if len(settings.UnretrievableAttributes) > 0 {
		query["_source"] = map[string]interface{}{
			"excludes": settings.UnretrievableAttributes,
		}
	}
	return query, nil
}

// attributeBoosts gives earlier searchable attributes a higher boost, on a
// scale from 1 to 10.
func attributeBoosts(attributes []string) map[string]int {
	boosts := make(map[string]int, len(attributes))
	n := len(attributes)
	for i, attribute := range attributes {
		boost := int(float64(n-i) / float64(n) * 10)
		if boost < 1 {
			boost = 1
		}
		boosts[attribute] = boost
	}
	return boosts
}

func mainType(fields map[string]models.FieldMapping, attribute string) (models.FieldMapping, string) {
	fieldMapping, ok := fields[attribute]
	if !ok || len(fieldMapping.DataType) == 0 {
		return fieldMapping, "text"
	}
	return fieldMapping, fieldMapping.DataType[0]
}

func generateSearchClauses(settings models.Settings, fields map[string]models.FieldMapping, searchString string) []map[string]interface{} {
	boosts := attributeBoosts(settings.SearchableAttributes)

	var shouldClauses []map[string]interface{}
	for _, attribute := range settings.SearchableAttributes {
		fieldMapping, dataType := mainType(fields, attribute)
		boost := float64(boosts[attribute])

		switch dataType {
		case "text":
			if settings.IsTypoToleranceDisabled(attribute) {
				shouldClauses = append(shouldClauses, generateExactQueries(attribute, fieldMapping, searchString, boost)...)
			} else {
				shouldClauses = append(shouldClauses, generateMatchQueries(attribute, searchString, boost)...)
			}
		case "keyword":
			shouldClauses = append(shouldClauses, map[string]interface{}{
				"term": map[string]interface{}{
					attribute: map[string]interface{}{"value": searchString, "boost": boost},
				},
			})
		case "object":
			// disabled or dynamic objects have no single field to query
		default:
			shouldClauses = append(shouldClauses, map[string]interface{}{
				"match": map[string]interface{}{
					attribute: map[string]interface{}{"query": searchString, "lenient": true, "boost": boost},
				},
			})
		}
	}
	return shouldClauses
}

func generateMatchQueries(attribute, searchString string, boostValue float64) []map[string]interface{} {
	return []map[string]interface{}{
		{
			"match_phrase": map[string]interface{}{
				attribute: map[string]interface{}{
					"query": searchString,
					"boost": boostValue * 1.0, // Full boost for exact phrase matches
				},
			},
		},
		{
			"match": map[string]interface{}{
				attribute: map[string]interface{}{
					"query":     searchString,
					"fuzziness": "AUTO",
					"boost":     boostValue * 0.8, // 80% of the original boost for fuzzy matches
				},
			},
		},
		{
			"match_bool_prefix": map[string]interface{}{
				attribute: map[string]interface{}{
					"query": searchString,
					"boost": boostValue * 0.5, // 50% of the original boost for prefix matches
				},
			},
		},
	}
}

// generateExactQueries is used for attributes without typo tolerance: no
// fuzziness and no prefix matching.
func generateExactQueries(attribute string, fieldMapping models.FieldMapping, searchString string, boostValue float64) []map[string]interface{} {
	clauses := []map[string]interface{}{
		{
			"match_phrase": map[string]interface{}{
				attribute: map[string]interface{}{
					"query": searchString,
					"boost": boostValue,
				},
			},
		},
	}
	if fieldMapping.HasKeyword() {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{
				attribute + ".keyword": map[string]interface{}{
					"value": searchString,
					"boost": boostValue,
				},
			},
		})
	}
	return clauses
}

// filterField returns the field to run exact filters and aggregations on.
func filterField(fields map[string]models.FieldMapping, attribute string) string {
	if fields[attribute].HasKeyword() {
		return attribute + ".keyword"
	}
	return attribute
}

func generateFilter(settings models.Settings, fields map[string]models.FieldMapping, f models.Filter) (map[string]interface{}, error) {
	mustClauses := make([]map[string]interface{}, 0, len(f))
	for _, filterUnit := range f {
		if !settings.IsFacet(filterUnit.Field) {
			return nil, errors.Wrapf(ErrInvalidFilter, "field %s is not an attribute for faceting", filterUnit.Field)
		}
		if len(filterUnit.Values) == 0 {
			return nil, errors.Wrapf(ErrInvalidFilter, "no values for field %s", filterUnit.Field)
		}

		fieldName := filterField(fields, filterUnit.Field)
		if len(filterUnit.Values) == 1 {
			mustClauses = append(mustClauses, map[string]interface{}{
				"term": map[string]interface{}{fieldName: filterUnit.Values[0]},
			})
		} else {
			mustClauses = append(mustClauses, map[string]interface{}{
				"terms": map[string]interface{}{fieldName: filterUnit.Values},
			})
		}
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": mustClauses,
		},
	}, nil
}

// generateSort ranks by relevance first; custom ranking breaks ties.
func generateSort(settings models.Settings, fields map[string]models.FieldMapping) []interface{} {
	rules := settings.RankingAttributes()
	if len(rules) == 0 {
		return nil
	}

	sort := []interface{}{
		map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
	}
	for _, rule := range rules {
		fieldName := rule.Attribute
		if _, dataType := mainType(fields, rule.Attribute); dataType == "text" {
			if !fields[rule.Attribute].HasKeyword() {
				// text without doc values cannot be sorted on
				continue
			}
			fieldName += ".keyword"
		}
		sort = append(sort, map[string]interface{}{
			fieldName: map[string]interface{}{
				"order":         rule.Order,
				"missing":       "_last",
				"unmapped_type": "keyword",
			},
		})
	}
	return sort
}
