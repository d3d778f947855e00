package services

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/pkg/errors"

	"search-settings-service/models"
)

// valueKind is the coarse type of a sample value.
type valueKind int

const (
	kindString valueKind = iota
	kindInteger
	kindFloat
	kindBoolean
	kindObject
)

func kindOf(value interface{}) valueKind {
	switch v := value.(type) {
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return kindInteger
		}
		return kindFloat
	case bool:
		return kindBoolean
	case float32:
		return kindFloat
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return kindInteger
		}
		return kindFloat
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInteger
	case map[string]interface{}, models.Attributes:
		return kindObject
	case []interface{}:
		// arrays take the type of their elements
		if len(v) > 0 {
			return kindOf(v[0])
		}
		return kindString
	}
	if value != nil && reflect.TypeOf(value).Kind() == reflect.Map {
		return kindObject
	}
	return kindString
}

var numericTypes = map[valueKind]string{
	kindInteger: "long",
	kindFloat:   "double",
	kindBoolean: "boolean",
}

func keywordSubField() map[string]interface{} {
	return map[string]interface{}{
		"keyword": map[string]interface{}{
			"type":         "keyword",
			"ignore_above": 256,
		},
	}
}

// createFieldMapping maps a single attribute according to the roles the
// settings give it.
func createFieldMapping(attribute string, value interface{}, settings models.Settings, ranking map[string]struct{}) map[string]interface{} {
	isSearchable := settings.IsSearchable(attribute)
	isFilterable := settings.IsFacet(attribute)
	_, isRanking := ranking[attribute]
	noTypo := settings.IsTypoToleranceDisabled(attribute)

	mapping := map[string]interface{}{}
	switch kind := kindOf(value); kind {
	case kindInteger, kindFloat, kindBoolean:
		mapping["type"] = numericTypes[kind]
		if !isSearchable && !isFilterable && !isRanking {
			mapping["index"] = false
			mapping["doc_values"] = false
		}
	case kindObject:
		mapping["type"] = "object"
		if !isSearchable {
			mapping["enabled"] = false
		}
	default:
		if isSearchable && (isFilterable || isRanking || noTypo) {
			mapping["type"] = "text"
			mapping["fields"] = keywordSubField()
		} else if isSearchable {
			mapping["type"] = "text"
		} else if isFilterable || isRanking {
			mapping["type"] = "keyword"
		} else {
			mapping["type"] = "text"
			mapping["index"] = false
		}
	}
	return mapping
}

// BuildMapping builds the mapping section for the sample attributes. Every
// attribute named by the settings is mapped even when it is missing from the
// sample; those are treated as strings.
func BuildMapping(settings models.Settings, sample models.Attributes) map[string]interface{} {
	ranking := make(map[string]struct{})
	for _, rule := range settings.RankingAttributes() {
		ranking[rule.Attribute] = struct{}{}
	}

	attributes := append(models.Attributes{}, sample...)
	for _, list := range [][]string{
		settings.SearchableAttributes,
		settings.AttributesForFaceting,
		settings.DisableTypoToleranceOnAttributes,
		settings.UnretrievableAttributes,
	} {
		for _, attribute := range list {
			if _, ok := attributes.Get(attribute); !ok {
				attributes = append(attributes, models.Attribute{Key: attribute})
			}
		}
	}
	for attribute := range ranking {
		if _, ok := attributes.Get(attribute); !ok {
			attributes = append(attributes, models.Attribute{Key: attribute})
		}
	}

	properties := make(map[string]interface{}, len(attributes))
	for _, attr := range attributes {
		properties[attr.Key] = createFieldMapping(attr.Key, attr.Value, settings, ranking)
	}

	return map[string]interface{}{
		"_meta": map[string]interface{}{
			"settings": settings,
		},
		"properties": properties,
	}
}

// BuildIndexBody builds the create-index body: the mapping plus index level
// settings.
func BuildIndexBody(settings models.Settings, sample models.Attributes) ([]byte, []byte, error) {
	mapping := BuildMapping(settings, sample)
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error marshaling mapping")
	}

	body := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"number_of_shards":   1,
				"number_of_replicas": 1,
			},
		},
		"mappings": json.RawMessage(mappingJSON),
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error marshaling index body")
	}
	return bodyJSON, mappingJSON, nil
}
