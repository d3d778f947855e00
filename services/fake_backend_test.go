package services

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"search-settings-service/models"
)

// fakeBackend records calls and answers from canned values.
type fakeBackend struct {
	exists        bool
	conflict      bool
	sample        models.Attributes
	mapping       *IndexMapping
	searchResult  json.RawMessage
	createdBodies [][]byte
	putMappings   [][]byte
	reindexed     [][]byte
	searches      [][]byte
}

func (b *fakeBackend) EnsureIndex(_ context.Context, _ models.IndexInfo, body []byte) (bool, error) {
	if b.exists {
		return false, nil
	}
	b.exists = true
	b.createdBodies = append(b.createdBodies, body)
	return true, nil
}

func (b *fakeBackend) PutMapping(_ context.Context, _ models.IndexInfo, mapping []byte) error {
	if b.conflict {
		return errors.Wrap(ErrMappingConflict, "cannot change type")
	}
	b.putMappings = append(b.putMappings, mapping)
	return nil
}

func (b *fakeBackend) Reindex(_ context.Context, _ models.IndexInfo, body []byte) error {
	b.reindexed = append(b.reindexed, body)
	return nil
}

func (b *fakeBackend) Mapping(_ context.Context, info models.IndexInfo) (IndexMapping, error) {
	if b.mapping == nil {
		return IndexMapping{}, errors.Wrap(ErrIndexNotFound, info.IndexName)
	}
	return *b.mapping, nil
}

func (b *fakeBackend) Sample(_ context.Context, info models.IndexInfo) (models.Attributes, error) {
	if b.sample == nil {
		return nil, errors.Wrap(ErrNoSample, info.IndexName)
	}
	return b.sample, nil
}

func (b *fakeBackend) Search(_ context.Context, _ models.IndexInfo, body []byte) (json.RawMessage, error) {
	b.searches = append(b.searches, body)
	return b.searchResult, nil
}
