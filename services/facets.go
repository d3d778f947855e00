package services

import (
	"encoding/json"

	"github.com/pkg/errors"

	"search-settings-service/models"
)

const defaultFacetSize = 10

// facetsFor resolves the facets of a listing request. Only attributes for
// faceting are kept; an empty request means all of them.
func facetsFor(settings models.Settings, facetReq models.FacetListingRequest) []models.FacetInfo {
	if len(facetReq.Facets) == 0 {
		facets := make([]models.FacetInfo, 0, len(settings.AttributesForFaceting))
		for _, attribute := range settings.AttributesForFaceting {
			facets = append(facets, models.FacetInfo{Key: attribute, Field: attribute, Size: defaultFacetSize})
		}
		return facets
	}

	facets := make([]models.FacetInfo, 0, len(facetReq.Facets))
	for _, facet := range facetReq.Facets {
		if !settings.IsFacet(facet.Field) {
			continue
		}
		if facet.Key == "" {
			facet.Key = facet.Field
		}
		if facet.Size == 0 {
			facet.Size = defaultFacetSize
		}
		facets = append(facets, facet)
	}
	return facets
}

func isAggregatable(fields map[string]models.FieldMapping, attribute string) bool {
	fieldMapping, ok := fields[attribute]
	if !ok {
		// not mapped yet, the keyword fallback applies
		return true
	}
	for _, dataType := range fieldMapping.DataType {
		if _, exists := models.AggregatableTypes[dataType]; exists {
			return true
		}
	}
	return false
}

// BuildFacetAggregations builds a terms aggregation per facet.
func BuildFacetAggregations(facets []models.FacetInfo, fields map[string]models.FieldMapping) map[string]interface{} {
	aggregations := make(map[string]interface{}, len(facets))
	for _, facet := range facets {
		if !isAggregatable(fields, facet.Field) {
			continue
		}
		aggregations[facet.Key] = map[string]interface{}{
			"terms": map[string]interface{}{
				"field": filterField(fields, facet.Field),
				"size":  facet.Size,
			},
		}
	}
	return aggregations
}

// BuildFacetQuery builds a search body that only returns aggregations.
func BuildFacetQuery(facets []models.FacetInfo, fields map[string]models.FieldMapping) map[string]interface{} {
	return map[string]interface{}{
		"size":         0,
		"aggregations": BuildFacetAggregations(facets, fields),
	}
}

func ParseFacetResponse(raw []byte) (models.DynamicFacetResponse, error) {
	var esResp models.FacetResponse
	if err := json.Unmarshal(raw, &esResp); err != nil {
		return models.DynamicFacetResponse{}, errors.Wrap(err, "error decoding facet response")
	}

	dynamicResponse := models.DynamicFacetResponse{FacetData: make(map[string][]models.FacetValue)}
	for key, rawAgg := range esResp.Aggregations {
		var facetAgg models.FacetAggregation
		if err := json.Unmarshal(rawAgg, &facetAgg); err != nil {
			return models.DynamicFacetResponse{}, errors.Wrapf(err, "error decoding aggregation %s", key)
		}

		values := make([]models.FacetValue, 0, len(facetAgg.Buckets))
		for _, bucket := range facetAgg.Buckets {
			values = append(values, models.FacetValue{
				Value:    bucket.Key,
				DocCount: bucket.DocCount,
			})
		}
		dynamicResponse.FacetData[key] = values
	}
	return dynamicResponse, nil
}
