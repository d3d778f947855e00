package services

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-settings-service/models"
)

const mappingResponse = `{
  "products_20240101000000": {
    "mappings": {
      "_meta": {
        "settings": {
          "searchableAttributes": ["title"],
          "attributesForFaceting": ["category"],
          "unretrievableAttributes": []
        }
      },
      "properties": {
        "title": {"type": "text"},
        "category": {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}},
        "address": {"properties": {"city": {"type": "keyword"}, "geo": {"properties": {"lat": {"type": "double"}}}}},
        "meta": {"type": "object", "enabled": false}
      }
    }
  }
}`

func TestParseMappingResponse(t *testing.T) {
	mapping, err := parseMappingResponse(strings.NewReader(mappingResponse))
	require.NoError(t, err)

	assert.Equal(t, "products_20240101000000", mapping.Index)
	require.NotNil(t, mapping.Settings)
	assert.Equal(t, []string{"title"}, mapping.Settings.SearchableAttributes)
	assert.Equal(t, []string{"category"}, mapping.Settings.AttributesForFaceting)

	assert.Equal(t, map[string]models.FieldMapping{
		"title":           {DataType: []string{"text"}},
		"category":        {DataType: []string{"text", "keyword"}},
		"address.city":    {DataType: []string{"keyword"}},
		"address.geo.lat": {DataType: []string{"double"}},
		"meta":            {DataType: []string{"object"}},
	}, mapping.FieldMappings)
	assert.True(t, mapping.FieldMappings["category"].HasKeyword())
	assert.False(t, mapping.FieldMappings["title"].HasKeyword())
}

func TestParseMappingResponse_WithoutMeta(t *testing.T) {
	mapping, err := parseMappingResponse(strings.NewReader(`{"legacy":{"mappings":{"properties":{"a":{"type":"long"}}}}}`))
	require.NoError(t, err)
	assert.Nil(t, mapping.Settings)
	assert.Len(t, mapping.FieldMappings, 1)

	_, err = parseMappingResponse(strings.NewReader(`{}`))
	assert.True(t, errors.Is(err, ErrIndexNotFound))

	_, err = parseMappingResponse(strings.NewReader(`[`))
	assert.Error(t, err)
}

func TestParseSampleResponse(t *testing.T) {
	sample, err := parseSampleResponse(strings.NewReader(`{"hits":{"hits":[{"_source":{"z":1,"a":"x","m":{"k":true}}}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, sample.Keys())

	_, err = parseSampleResponse(strings.NewReader(`{"hits":{"hits":[]}}`))
	assert.True(t, errors.Is(err, ErrNoSample))
}

func TestParseAliasResponse(t *testing.T) {
	indices, err := parseAliasResponse(strings.NewReader(`{"products_1":{"aliases":{"products_ReadAlias":{}}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"products_1"}, indices)
}

func TestAliasActions(t *testing.T) {
	assert.JSONEq(t,
		`{"actions":[{"remove":{"index":"a","alias":"x"}},{"add":{"index":"b","alias":"x"}}]}`,
		string(aliasActions(aliasAction("remove", "a", "x"), aliasAction("add", "b", "x"))),
	)
}

func TestVersionedIndexName(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 8, 9, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "products_20240305060809", versionedIndexName(models.IndexInfoFor("products"), now))
}

func TestNewBackend(t *testing.T) {
	_, err := NewBackend(BackendConfig{Kind: "solr", URL: "http://localhost"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownBackend))

	backend, err := NewBackend(BackendConfig{Kind: BackendOpenSearch, URL: "http://localhost:9200"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenSearchClient{}, backend)

	backend, err = NewBackend(BackendConfig{Kind: BackendElasticsearch, URL: "http://localhost:9200"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ElasticsearchClient{}, backend)
}
