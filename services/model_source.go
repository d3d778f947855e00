package services

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"search-settings-service/models"
)

// ModelSource supplies a sample instance of a named model.
type ModelSource interface {
	Model(ctx context.Context, name string) (models.Model, error)
}

type modelsFile struct {
	Models []models.Model `yaml:"models"`
}

// LoadModelsFromFile loads sample models from a YAML file
func LoadModelsFromFile(filename string) (map[string]models.Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "error reading models file")
	}

	var file modelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling models")
	}

	byName := make(map[string]models.Model, len(file.Models))
	for i, m := range file.Models {
		if m.Name == "" {
			return nil, errors.Errorf("models[%d]: name is required", i)
		}
		byName[m.Name] = m
	}
	return byName, nil
}

// FileModelSource serves sample models kept in memory, usually loaded with
// LoadModelsFromFile.
type FileModelSource struct {
	models map[string]models.Model
}

func NewFileModelSource(filename string) (*FileModelSource, error) {
	byName, err := LoadModelsFromFile(filename)
	if err != nil {
		return nil, err
	}
	return &FileModelSource{models: byName}, nil
}

func NewStaticModelSource(list ...models.Model) *FileModelSource {
	byName := make(map[string]models.Model, len(list))
	for _, m := range list {
		byName[m.Name] = m
	}
	return &FileModelSource{models: byName}
}

func (s *FileModelSource) Model(_ context.Context, name string) (models.Model, error) {
	m, ok := s.models[name]
	if !ok {
		return models.Model{}, errors.Wrap(ErrModelNotFound, name)
	}
	return m, nil
}

// IndexModelSource treats the first document of an index as the sample
// instance of the model of the same name.
type IndexModelSource struct {
	backend Backend
}

func NewIndexModelSource(backend Backend) *IndexModelSource {
	return &IndexModelSource{backend: backend}
}

func (s *IndexModelSource) Model(ctx context.Context, name string) (models.Model, error) {
	doc, err := s.backend.Sample(ctx, models.IndexInfoFor(name))
	if err != nil {
		return models.Model{}, err
	}
	return models.Model{Name: name, Index: name, Attributes: doc}, nil
}

// ChainModelSource asks each source in turn and returns the first model
// found.
type ChainModelSource []ModelSource

func (c ChainModelSource) Model(ctx context.Context, name string) (models.Model, error) {
	for _, source := range c {
		m, err := source.Model(ctx, name)
		if errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrNoSample) {
			continue
		}
		return m, err
	}
	return models.Model{}, errors.Wrap(ErrModelNotFound, name)
}
