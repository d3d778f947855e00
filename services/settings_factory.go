package services

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"search-settings-service/metrics"
	"search-settings-service/models"
)

// SettingsFactory infers index settings from a model's attributes.
type SettingsFactory struct {
	models ModelSource
	logger *zap.Logger

	customRankingKeys                    PatternList
	unsearchableAttributesKeys           PatternList
	attributesForFacetingKeys            PatternList
	unretrievableAttributes              PatternList
	unsearchableAttributesValues         PatternList
	disableTypoToleranceOnAttributesKeys PatternList
}

func NewSettingsFactory(rules RuleSet, source ModelSource, logger *zap.Logger) (*SettingsFactory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &SettingsFactory{models: source, logger: logger.Named("factory")}

	tables := []struct {
		name     string
		patterns []string
		dst      *PatternList
	}{
		{"customRankingKeys", rules.CustomRankingKeys, &f.customRankingKeys},
		{"unsearchableAttributesKeys", rules.UnsearchableAttributesKeys, &f.unsearchableAttributesKeys},
		{"attributesForFacetingKeys", rules.AttributesForFacetingKeys, &f.attributesForFacetingKeys},
		{"unretrievableAttributes", rules.UnretrievableAttributes, &f.unretrievableAttributes},
		{"unsearchableAttributesValues", rules.UnsearchableAttributesValues, &f.unsearchableAttributesValues},
		{"disableTypoToleranceOnAttributesKeys", rules.DisableTypoToleranceOnAttributesKeys, &f.disableTypoToleranceOnAttributesKeys},
	}
	for _, table := range tables {
		list, err := CompilePatternList(table.patterns)
		if err != nil {
			return nil, errors.Wrapf(err, "rule table %s", table.name)
		}
		*table.dst = list
	}
	return f, nil
}

// Create builds the settings of the named model from one of its sample
// instances.
func (f *SettingsFactory) Create(ctx context.Context, model string) (models.Settings, error) {
	_, settings, err := f.CreateForModel(ctx, model)
	return settings, err
}

// CreateForModel is Create that also returns the sample instance used.
func (f *SettingsFactory) CreateForModel(ctx context.Context, model string) (models.Model, models.Settings, error) {
	if f.models == nil {
		return models.Model{}, models.Settings{}, errors.Wrap(ErrModelNotFound, model)
	}
	instance, err := f.models.Model(ctx, model)
	if err != nil {
		return models.Model{}, models.Settings{}, err
	}

	settings := f.Detect(instance.DetectableAttributes())
	f.logger.Debug("settings created",
		zap.String("model", model),
		zap.Int("attributes", len(instance.Attributes)),
		zap.Strings("searchable", settings.SearchableAttributes),
	)
	return instance, settings, nil
}

// Detect runs every attribute through the five predicates. Lists keep the
// attribute order.
func (f *SettingsFactory) Detect(attributes models.Attributes) models.Settings {
	searchableAttributes := []string{}
	var attributesForFaceting []string
	var customRanking []string
	var disableTypoToleranceOnAttributes []string
	unretrievableAttributes := []string{}

	for _, attr := range attributes {
		key, value := attr.Key, attr.Value

		if f.IsSearchableAttributes(key, value) {
			searchableAttributes = append(searchableAttributes, key)
		}

		if f.IsAttributesForFaceting(key, value) {
			attributesForFaceting = append(attributesForFaceting, key)
		}

		if f.IsCustomRanking(key, value) {
			customRanking = append(customRanking, models.RankingRule{Attribute: key, Order: "desc"}.String())
		}

		if f.IsDisableTypoToleranceOnAttributes(key, value) {
			disableTypoToleranceOnAttributes = append(disableTypoToleranceOnAttributes, key)
		}

		if f.IsUnretrievableAttributes(key, value) {
			unretrievableAttributes = append(unretrievableAttributes, key)
		}
	}

	settings := models.Settings{
		SearchableAttributes:             searchableAttributes,
		AttributesForFaceting:            attributesForFaceting,
		CustomRanking:                    customRanking,
		DisableTypoToleranceOnAttributes: disableTypoToleranceOnAttributes,
		UnretrievableAttributes:          unretrievableAttributes,
	}
	metrics.ObserveDetection(len(attributes), settings)
	return settings
}

func (f *SettingsFactory) IsSearchableAttributes(key string, value interface{}) bool {
	return !f.unsearchableAttributesKeys.Match(key) && !f.unsearchableAttributesValues.MatchValue(value)
}

func (f *SettingsFactory) IsAttributesForFaceting(key string, value interface{}) bool {
	return f.attributesForFacetingKeys.Match(key)
}

func (f *SettingsFactory) IsCustomRanking(key string, value interface{}) bool {
	return f.customRankingKeys.Match(key)
}

func (f *SettingsFactory) IsDisableTypoToleranceOnAttributes(key string, value interface{}) bool {
	return f.disableTypoToleranceOnAttributesKeys.Match(key)
}

func (f *SettingsFactory) IsUnretrievableAttributes(key string, value interface{}) bool {
	return f.unretrievableAttributes.Match(key)
}
