package services

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"search-settings-service/models"
)

// SettingsService ties detection, the local settings files and the search
// backend together.
type SettingsService struct {
	factory *SettingsFactory
	store   *SettingsStore
	backend Backend
	logger  *zap.Logger
}

func NewSettingsService(factory *SettingsFactory, store *SettingsStore, backend Backend, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{factory: factory, store: store, backend: backend, logger: logger.Named("settings")}
}

func (s *SettingsService) Detect(attributes models.Attributes) models.Settings {
	return s.factory.Detect(attributes)
}

func (s *SettingsService) Create(ctx context.Context, model string) (models.Settings, error) {
	return s.factory.Create(ctx, model)
}

// Optimize creates the settings of a model and saves them under the model's
// index name.
func (s *SettingsService) Optimize(ctx context.Context, model string) (string, models.Settings, error) {
	instance, settings, err := s.factory.CreateForModel(ctx, model)
	if err != nil {
		return "", models.Settings{}, err
	}
	index := instance.IndexName()
	if err := s.store.Save(index, settings); err != nil {
		return "", models.Settings{}, err
	}
	s.logger.Info("settings optimized", zap.String("model", model), zap.String("index", index))
	return index, settings, nil
}

// DetectAndSave detects settings for an index and saves them. Without
// attributes, a sample document of the index is used.
func (s *SettingsService) DetectAndSave(ctx context.Context, index string, attributes models.Attributes) (models.Settings, error) {
	if attributes == nil {
		if s.backend == nil {
			return models.Settings{}, errors.Wrap(ErrNoSample, index)
		}
		sample, err := s.backend.Sample(ctx, models.IndexInfoFor(index))
		if err != nil {
			return models.Settings{}, err
		}
		attributes = sample
	}

	settings := s.factory.Detect(attributes)
	if err := s.store.Save(index, settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *SettingsService) Load(index string) (models.Settings, error) {
	return s.store.Load(index)
}

// Apply pushes the saved settings of an index to the backend. A mapping the
// backend cannot change in place is applied by reindexing.
func (s *SettingsService) Apply(ctx context.Context, index string) error {
	if s.backend == nil {
		return errors.New("no search backend configured")
	}
	settings, err := s.store.Load(index)
	if err != nil {
		return err
	}
	info := models.IndexInfoFor(index)

	sample, err := s.backend.Sample(ctx, info)
	if err != nil && !errors.Is(err, ErrNoSample) {
		return err
	}

	body, mapping, err := BuildIndexBody(settings, sample)
	if err != nil {
		return err
	}

	created, err := s.backend.EnsureIndex(ctx, info, body)
	if err != nil {
		return err
	}
	if created {
		return nil
	}

	err = s.backend.PutMapping(ctx, info, mapping)
	if errors.Is(err, ErrMappingConflict) {
		s.logger.Info("mapping conflict, reindexing", zap.String("index", index), zap.Error(err))
		return s.backend.Reindex(ctx, info, body)
	}
	if err != nil {
		return err
	}
	s.logger.Info("settings applied", zap.String("index", index))
	return nil
}

type SyncState string

const (
	StateSynced    SyncState = "synced"
	StateLocalOnly SyncState = "local only"
	StateDiffers   SyncState = "differs"
)

type IndexStatus struct {
	Index string    `json:"index"`
	State SyncState `json:"state"`
}

// IndexStatus compares the saved settings of an index with the ones applied
// to the backend.
func (s *SettingsService) IndexStatus(ctx context.Context, index string) (IndexStatus, error) {
	local, err := s.store.Load(index)
	if err != nil {
		return IndexStatus{}, err
	}
	if s.backend == nil {
		return IndexStatus{Index: index, State: StateLocalOnly}, nil
	}

	mapping, err := s.backend.Mapping(ctx, models.IndexInfoFor(index))
	if errors.Is(err, ErrIndexNotFound) {
		return IndexStatus{Index: index, State: StateLocalOnly}, nil
	}
	if err != nil {
		return IndexStatus{}, err
	}
	if mapping.Settings == nil {
		return IndexStatus{Index: index, State: StateLocalOnly}, nil
	}
	if !local.Equal(*mapping.Settings) {
		return IndexStatus{Index: index, State: StateDiffers}, nil
	}
	return IndexStatus{Index: index, State: StateSynced}, nil
}

func (s *SettingsService) Status(ctx context.Context) ([]IndexStatus, error) {
	indices, err := s.store.List()
	if err != nil {
		return nil, err
	}
	statuses := make([]IndexStatus, 0, len(indices))
	for _, index := range indices {
		status, err := s.IndexStatus(ctx, index)
		if err != nil {
			return nil, errors.Wrapf(err, "index %s", index)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// queryContext loads what query building needs: the saved settings and the
// field mappings of the index.
func (s *SettingsService) queryContext(ctx context.Context, index string) (models.Settings, map[string]models.FieldMapping, error) {
	if s.backend == nil {
		return models.Settings{}, nil, errors.New("no search backend configured")
	}
	settings, err := s.store.Load(index)
	if err != nil {
		return models.Settings{}, nil, err
	}
	mapping, err := s.backend.Mapping(ctx, models.IndexInfoFor(index))
	if err != nil {
		return models.Settings{}, nil, err
	}
	return settings, mapping.FieldMappings, nil
}

func (s *SettingsService) Search(ctx context.Context, req models.SearchReq) (map[string]interface{}, error) {
	settings, fields, err := s.queryContext(ctx, req.IndexName)
	if err != nil {
		return nil, err
	}
	query, err := BuildSearchQuery(settings, fields, req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, "some error occurred while building search query")
	}

	raw, err := s.backend.Search(ctx, models.IndexInfoFor(req.IndexName), body)
	if err != nil {
		return nil, err
	}
	var searchResponse struct {
		Hits map[string]interface{} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &searchResponse); err != nil {
		return nil, errors.Wrap(err, "error decoding search response")
	}
	return searchResponse.Hits, nil
}

func (s *SettingsService) Facets(ctx context.Context, index string, req models.FacetListingRequest) (models.DynamicFacetResponse, error) {
	settings, fields, err := s.queryContext(ctx, index)
	if err != nil {
		return models.DynamicFacetResponse{}, err
	}
	facets := facetsFor(settings, req)
	body, err := json.Marshal(BuildFacetQuery(facets, fields))
	if err != nil {
		return models.DynamicFacetResponse{}, errors.Wrap(err, "error building facet query")
	}

	raw, err := s.backend.Search(ctx, models.IndexInfoFor(index), body)
	if err != nil {
		return models.DynamicFacetResponse{}, err
	}
	return ParseFacetResponse(raw)
}

// Attributes lists the mapped attribute paths of an index, sorted.
func (s *SettingsService) Attributes(ctx context.Context, index string) ([]string, error) {
	if s.backend == nil {
		return nil, errors.New("no search backend configured")
	}
	mapping, err := s.backend.Mapping(ctx, models.IndexInfoFor(index))
	if err != nil {
		return nil, err
	}
	attributes := make([]string, 0, len(mapping.FieldMappings))
	for attribute := range mapping.FieldMappings {
		attributes = append(attributes, attribute)
	}
	sort.Strings(attributes)
	return attributes, nil
}
