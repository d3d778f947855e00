package services

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"search-settings-service/models"
)

// Backend is the search engine the settings are applied to.
type Backend interface {
	// EnsureIndex creates the physical index with body and points the read
	// and write aliases at it, unless the read alias already resolves.
	EnsureIndex(ctx context.Context, info models.IndexInfo, body []byte) (created bool, err error)
	// PutMapping updates the mapping behind the write alias. A change the
	// engine refuses in place yields ErrMappingConflict.
	PutMapping(ctx context.Context, info models.IndexInfo, mapping []byte) error
	// Reindex moves the data into a new physical index created with body and
	// swaps both aliases over to it.
	Reindex(ctx context.Context, info models.IndexInfo, body []byte) error
	Mapping(ctx context.Context, info models.IndexInfo) (IndexMapping, error)
	Sample(ctx context.Context, info models.IndexInfo) (models.Attributes, error)
	Search(ctx context.Context, info models.IndexInfo, body []byte) (json.RawMessage, error)
}

type BackendConfig struct {
	Kind     string
	URL      string
	Username string
	Password string
	Insecure bool
}

const (
	BackendElasticsearch = "elasticsearch"
	BackendOpenSearch    = "opensearch"
)

func NewBackend(cfg BackendConfig, logger *zap.Logger) (Backend, error) {
	switch cfg.Kind {
	case BackendElasticsearch, "":
		return NewElasticsearchClient(cfg, logger)
	case BackendOpenSearch:
		return NewOpenSearchClient(cfg, logger)
	}
	return nil, errors.Wrap(ErrUnknownBackend, cfg.Kind)
}

// IndexMapping is the parsed mapping of an index.
type IndexMapping struct {
	Index         string
	FieldMappings map[string]models.FieldMapping
	// Settings is the settings document stored in the mapping metadata, nil
	// when the index was not created by this service.
	Settings *models.Settings
}

// parseMappingResponse reads a get-mapping response. Only the first index of
// the response is considered; an alias resolves to a single index.
func parseMappingResponse(r io.Reader) (IndexMapping, error) {
	var response map[string]struct {
		Mappings struct {
			Meta struct {
				Settings *models.Settings `json:"settings"`
			} `json:"_meta"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(r).Decode(&response); err != nil {
		return IndexMapping{}, errors.Wrap(err, "error decoding mapping")
	}

	for index, body := range response {
		fieldMappings := make(map[string]models.FieldMapping)
		if err := processMapping(body.Mappings.Properties, "", fieldMappings); err != nil {
			return IndexMapping{}, err
		}
		return IndexMapping{
			Index:         index,
			FieldMappings: fieldMappings,
			Settings:      body.Mappings.Meta.Settings,
		}, nil
	}
	return IndexMapping{}, ErrIndexNotFound
}

// processMapping recursively flattens the mapping properties
func processMapping(properties map[string]interface{}, prefix string, fieldMappings map[string]models.FieldMapping) error {
	for field, mapping := range properties {
		mappingMap, ok := mapping.(map[string]interface{})
		if !ok {
			return errors.Errorf("unexpected mapping for field %s", field)
		}
		currentPath := field
		if prefix != "" {
			currentPath = prefix + "." + field
		}

		if nestedProps, ok := mappingMap["properties"].(map[string]interface{}); ok {
			if err := processMapping(nestedProps, currentPath, fieldMappings); err != nil {
				return err
			}
			continue
		}

		dataType, _ := mappingMap["type"].(string)
		if dataType == "" {
			dataType = "object"
		}
		dataTypes := []string{dataType}
		if fields, ok := mappingMap["fields"].(map[string]interface{}); ok {
			for _, subMapping := range fields {
				if sub, ok := subMapping.(map[string]interface{}); ok {
					if subType, ok := sub["type"].(string); ok {
						dataTypes = append(dataTypes, subType)
					}
				}
			}
		}

		fieldMappings[currentPath] = models.FieldMapping{DataType: dataTypes}
	}
	return nil
}

// parseSampleResponse extracts the _source of the first hit of a search
// response, keeping its key order.
func parseSampleResponse(r io.Reader) (models.Attributes, error) {
	var response struct {
		Hits struct {
			Hits []struct {
				Source models.Attributes `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "error decoding sample")
	}
	if len(response.Hits.Hits) == 0 {
		return nil, ErrNoSample
	}
	return response.Hits.Hits[0].Source, nil
}

// parseAliasResponse returns the indices a get-alias response lists.
func parseAliasResponse(r io.Reader) ([]string, error) {
	var response map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "error decoding aliases")
	}
	indices := make([]string, 0, len(response))
	for index := range response {
		indices = append(indices, index)
	}
	return indices, nil
}

var sampleQuery = []byte(`{"size":1,"query":{"match_all":{}}}`)

func aliasActions(actions ...map[string]interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{"actions": actions})
	return b
}

func aliasAction(kind, index, alias string) map[string]interface{} {
	return map[string]interface{}{kind: map[string]interface{}{"index": index, "alias": alias}}
}

// versionedIndexName names the physical index a reindex writes into.
func versionedIndexName(info models.IndexInfo, now time.Time) string {
	return info.IndexName + "_" + now.UTC().Format("20060102150405")
}

// responseError turns a non-2xx response into an error carrying the engine's
// message.
func responseError(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 4096))
	return errors.Errorf("error %s: [%d] %s", op, status, strings.TrimSpace(string(msg)))
}
