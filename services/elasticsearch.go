package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"search-settings-service/models"
)

type ElasticsearchClient struct {
	client *elasticsearch.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewElasticsearchClient(cfg BackendConfig, logger *zap.Logger) (*ElasticsearchClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("elasticsearch url required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tr := &http.Transport{}
	if cfg.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: tr,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating elasticsearch client")
	}
	return &ElasticsearchClient{client: client, logger: logger.Named("elasticsearch"), now: time.Now}, nil
}

func (es *ElasticsearchClient) EnsureIndex(ctx context.Context, index models.IndexInfo, body []byte) (bool, error) {
	existsReq := esapi.IndicesExistsRequest{
		Index: []string{index.ReadAlias},
	}
	existsRes, err := existsReq.Do(ctx, es.client)
	if err != nil {
		return false, errors.Wrap(err, "indices exists")
	}
	if existsRes.Body != nil {
		existsRes.Body.Close()
	}
	switch existsRes.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, errors.Errorf("indices exists status %d", existsRes.StatusCode)
	}

	if err := es.createIndex(ctx, index.IndexName, body); err != nil {
		return false, err
	}

	// TODO: make this idempotent for the case where the index was created but the aliases were not
	err = es.updateAliases(ctx, aliasActions(
		aliasAction("add", index.IndexName, index.ReadAlias),
		aliasAction("add", index.IndexName, index.WriteAlias),
	))
	if err != nil {
		return false, err
	}
	es.logger.Info("index created", zap.String("index", index.IndexName))
	return true, nil
}

func (es *ElasticsearchClient) createIndex(ctx context.Context, name string, body []byte) error {
	req := esapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return errors.Wrap(err, "indices create")
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("creating index", res.StatusCode, res.Body)
	}
	return nil
}

func (es *ElasticsearchClient) updateAliases(ctx context.Context, actions []byte) error {
	req := esapi.IndicesUpdateAliasesRequest{
		Body: bytes.NewReader(actions),
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return errors.Wrap(err, "update aliases")
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("updating aliases", res.StatusCode, res.Body)
	}
	return nil
}

func (es *ElasticsearchClient) PutMapping(ctx context.Context, index models.IndexInfo, mapping []byte) error {
	req := esapi.IndicesPutMappingRequest{
		Index: []string{index.WriteAlias},
		Body:  bytes.NewReader(mapping),
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return errors.Wrap(err, "put mapping")
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusBadRequest {
		return errors.Wrap(ErrMappingConflict, responseError("updating mapping", res.StatusCode, res.Body).Error())
	}
	if res.IsError() {
		return responseError("updating mapping", res.StatusCode, res.Body)
	}
	return nil
}

// Reindex follows the alias switch: create the new index, move the write
// alias, copy the documents, then move the read alias.
func (es *ElasticsearchClient) Reindex(ctx context.Context, index models.IndexInfo, body []byte) error {
	currentIndex, err := es.currentIndex(ctx, index.ReadAlias)
	if err != nil {
		return err
	}

	newIndexName := versionedIndexName(index, es.now())
	if err := es.createIndex(ctx, newIndexName, body); err != nil {
		return err
	}

	err = es.updateAliases(ctx, aliasActions(
		aliasAction("remove", currentIndex, index.WriteAlias),
		aliasAction("add", newIndexName, index.WriteAlias),
	))
	if err != nil {
		return err
	}

	reindexBody, _ := json.Marshal(map[string]interface{}{
		"source": map[string]interface{}{"index": currentIndex},
		"dest":   map[string]interface{}{"index": newIndexName},
	})
	waitForCompletion := true
	reindexReq := esapi.ReindexRequest{
		Body:              bytes.NewReader(reindexBody),
		WaitForCompletion: &waitForCompletion,
	}
	reindexRes, err := reindexReq.Do(ctx, es.client)
	if err != nil {
		return errors.Wrap(err, "reindex")
	}
	defer reindexRes.Body.Close()
	if reindexRes.IsError() {
		return responseError("reindexing", reindexRes.StatusCode, reindexRes.Body)
	}

	err = es.updateAliases(ctx, aliasActions(
		aliasAction("remove", currentIndex, index.ReadAlias),
		aliasAction("add", newIndexName, index.ReadAlias),
	))
	if err != nil {
		return err
	}

	// TODO: delete the previous physical index once nothing reads from it
	es.logger.Info("index reindexed",
		zap.String("from", currentIndex),
		zap.String("to", newIndexName),
	)
	return nil
}

func (es *ElasticsearchClient) currentIndex(ctx context.Context, alias string) (string, error) {
	req := esapi.IndicesGetAliasRequest{
		Name: []string{alias},
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return "", errors.Wrap(err, "get alias")
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return "", errors.Wrap(ErrIndexNotFound, alias)
	}
	if res.IsError() {
		return "", responseError("getting alias", res.StatusCode, res.Body)
	}

	indices, err := parseAliasResponse(res.Body)
	if err != nil {
		return "", err
	}
	if len(indices) != 1 {
		return "", errors.Errorf("alias %s points to %d indices", alias, len(indices))
	}
	return indices[0], nil
}

func (es *ElasticsearchClient) Mapping(ctx context.Context, index models.IndexInfo) (IndexMapping, error) {
	req := esapi.IndicesGetMappingRequest{
		Index: []string{index.ReadAlias},
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return IndexMapping{}, errors.Wrap(err, "get mapping")
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return IndexMapping{}, errors.Wrap(ErrIndexNotFound, index.IndexName)
	}
	if res.IsError() {
		return IndexMapping{}, responseError("getting index mapping", res.StatusCode, res.Body)
	}
	return parseMappingResponse(res.Body)
}

func (es *ElasticsearchClient) Sample(ctx context.Context, index models.IndexInfo) (models.Attributes, error) {
	res, err := es.search(ctx, index, sampleQuery)
	if errors.Is(err, ErrIndexNotFound) {
		return nil, errors.Wrap(ErrNoSample, index.IndexName)
	}
	if err != nil {
		return nil, err
	}
	defer res.Close()
	return parseSampleResponse(res)
}

func (es *ElasticsearchClient) Search(ctx context.Context, index models.IndexInfo, body []byte) (json.RawMessage, error) {
	es.logger.Debug("search", zap.String("index", index.ReadAlias), zap.ByteString("body", body))
	res, err := es.search(ctx, index, body)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	raw, err := io.ReadAll(res)
	if err != nil {
		return nil, errors.Wrap(err, "error reading search response")
	}
	return raw, nil
}

func (es *ElasticsearchClient) search(ctx context.Context, index models.IndexInfo, body []byte) (io.ReadCloser, error) {
	req := esapi.SearchRequest{
		Index: []string{index.ReadAlias},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, es.client)
	if err != nil {
		return nil, errors.Wrap(err, "search")
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil, errors.Wrap(ErrIndexNotFound, index.IndexName)
	}
	if res.IsError() {
		defer res.Body.Close()
		return nil, responseError("searching", res.StatusCode, res.Body)
	}
	return res.Body, nil
}
