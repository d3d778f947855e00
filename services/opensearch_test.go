package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-settings-service/models"
)

func newTestOpenSearch(t *testing.T, routes map[string]engineResponse) (*OpenSearchClient, *fakeEngine) {
	t.Helper()
	engine, url := newFakeEngine(t, routes)
	client, err := NewOpenSearchClient(BackendConfig{Kind: BackendOpenSearch, URL: url}, nil)
	require.NoError(t, err)
	client.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return client, engine
}

func TestOpenSearchClient_EnsureIndex(t *testing.T) {
	client, engine := newTestOpenSearch(t, map[string]engineResponse{
		"/products_ReadAlias": {status: http.StatusNotFound},
		"/products":           {body: acknowledged},
		"/_aliases":           {body: acknowledged},
	})

	created, err := client.EnsureIndex(context.Background(), models.IndexInfoFor("products"), []byte(`{"mappings":{}}`))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"/products_ReadAlias", "/products", "/_aliases"}, engine.paths())

	client, engine = newTestOpenSearch(t, map[string]engineResponse{
		"/products_ReadAlias": {},
	})
	created, err = client.EnsureIndex(context.Background(), models.IndexInfoFor("products"), nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"/products_ReadAlias"}, engine.paths())
}

func TestOpenSearchClient_PutMappingConflict(t *testing.T) {
	client, _ := newTestOpenSearch(t, map[string]engineResponse{
		"/products_WriteAlias/_mapping": {status: http.StatusBadRequest, body: conflictResponse},
	})
	err := client.PutMapping(context.Background(), models.IndexInfoFor("products"), []byte(`{}`))
	assert.True(t, errors.Is(err, ErrMappingConflict))
}

func TestOpenSearchClient_Reindex(t *testing.T) {
	client, engine := newTestOpenSearch(t, map[string]engineResponse{
		"/_alias/products_ReadAlias": {body: `{"products":{"aliases":{"products_ReadAlias":{}}}}`},
		"/products_20240102030405":   {body: acknowledged},
		"/_aliases":                  {body: acknowledged},
		"/_reindex":                  {body: `{"total":3,"created":3}`},
	})

	require.NoError(t, client.Reindex(context.Background(), models.IndexInfoFor("products"), []byte(`{}`)))
	assert.Equal(t, []string{
		"/_alias/products_ReadAlias",
		"/products_20240102030405",
		"/_aliases",
		"/_reindex",
		"/_aliases",
	}, engine.paths())
	assert.JSONEq(t, `{"source":{"index":"products"},"dest":{"index":"products_20240102030405"}}`, engine.body("/_reindex"))
}

func TestOpenSearchClient_MappingSampleSearch(t *testing.T) {
	client, _ := newTestOpenSearch(t, map[string]engineResponse{
		"/products_ReadAlias/_mapping": {body: mappingResponse},
		"/products_ReadAlias/_search":  {body: sampleHitResponse},
		"/orders_ReadAlias/_search":    {status: http.StatusNotFound, body: notFoundResponse},
	})

	mapping, err := client.Mapping(context.Background(), models.IndexInfoFor("products"))
	require.NoError(t, err)
	assert.Contains(t, mapping.FieldMappings, "address.city")

	sample, err := client.Sample(context.Background(), models.IndexInfoFor("products"))
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "id"}, sample.Keys())

	_, err = client.Sample(context.Background(), models.IndexInfoFor("orders"))
	assert.True(t, errors.Is(err, ErrNoSample))

	raw, err := client.Search(context.Background(), models.IndexInfoFor("products"), []byte(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, sampleHitResponse, string(raw))
}
