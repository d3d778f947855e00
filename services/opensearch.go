package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v4"
	opensearchapi "github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"search-settings-service/models"
)

type OpenSearchClient struct {
	client *opensearch.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewOpenSearchClient(cfg BackendConfig, logger *zap.Logger) (*OpenSearchClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("opensearch url required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tr := &http.Transport{}
	if cfg.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: tr,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating opensearch client")
	}
	return &OpenSearchClient{client: c, logger: logger.Named("opensearch"), now: time.Now}, nil
}

// do runs req and returns the response when its status is 2xx. Other
// statuses are returned as errors, except the ones listed in allow.
func (osc *OpenSearchClient) do(ctx context.Context, op string, req opensearch.Request, allow ...int) (*opensearch.Response, error) {
	res, err := osc.client.Do(ctx, req, nil)
	if res != nil {
		for _, status := range allow {
			if res.StatusCode == status {
				return res, nil
			}
		}
	}
	if err != nil {
		if res != nil && res.Body != nil {
			res.Body.Close()
		}
		return nil, errors.Wrap(err, op)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer res.Body.Close()
		return nil, responseError(op, res.StatusCode, res.Body)
	}
	return res, nil
}

func (osc *OpenSearchClient) EnsureIndex(ctx context.Context, index models.IndexInfo, body []byte) (bool, error) {
	res, err := osc.do(ctx, "indices exists", opensearchapi.IndicesExistsReq{Indices: []string{index.ReadAlias}}, http.StatusNotFound)
	if err != nil {
		return false, err
	}
	if res.Body != nil {
		res.Body.Close()
	}
	if res.StatusCode != http.StatusNotFound {
		return false, nil
	}

	if err := osc.createIndex(ctx, index.IndexName, body); err != nil {
		return false, err
	}
	err = osc.updateAliases(ctx, aliasActions(
		aliasAction("add", index.IndexName, index.ReadAlias),
		aliasAction("add", index.IndexName, index.WriteAlias),
	))
	if err != nil {
		return false, err
	}
	osc.logger.Info("index created", zap.String("index", index.IndexName))
	return true, nil
}

func (osc *OpenSearchClient) createIndex(ctx context.Context, name string, body []byte) error {
	res, err := osc.do(ctx, "indices create", opensearchapi.IndicesCreateReq{Index: name, Body: bytes.NewReader(body)})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

func (osc *OpenSearchClient) updateAliases(ctx context.Context, actions []byte) error {
	res, err := osc.do(ctx, "update aliases", opensearchapi.AliasesReq{Body: bytes.NewReader(actions)})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

func (osc *OpenSearchClient) PutMapping(ctx context.Context, index models.IndexInfo, mapping []byte) error {
	req := opensearchapi.MappingPutReq{Indices: []string{index.WriteAlias}, Body: bytes.NewReader(mapping)}
	res, err := osc.do(ctx, "put mapping", req, http.StatusBadRequest)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusBadRequest {
		return errors.Wrap(ErrMappingConflict, responseError("put mapping", res.StatusCode, res.Body).Error())
	}
	return nil
}

func (osc *OpenSearchClient) Reindex(ctx context.Context, index models.IndexInfo, body []byte) error {
	res, err := osc.do(ctx, "get alias", opensearchapi.AliasGetReq{Alias: []string{index.ReadAlias}}, http.StatusNotFound)
	if err != nil {
		return err
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return errors.Wrap(ErrIndexNotFound, index.ReadAlias)
	}
	indices, err := parseAliasResponse(res.Body)
	res.Body.Close()
	if err != nil {
		return err
	}
	if len(indices) != 1 {
		return errors.Errorf("alias %s points to %d indices", index.ReadAlias, len(indices))
	}
	currentIndex := indices[0]

	newIndexName := versionedIndexName(index, osc.now())
	if err := osc.createIndex(ctx, newIndexName, body); err != nil {
		return err
	}
	err = osc.updateAliases(ctx, aliasActions(
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
	res, err = osc.do(ctx, "reindex", opensearchapi.ReindexReq{
		Body:   bytes.NewReader(reindexBody),
		Params: opensearchapi.ReindexParams{WaitForCompletion: &waitForCompletion},
	})
	if err != nil {
		return err
	}
	res.Body.Close()

	err = osc.updateAliases(ctx, aliasActions(
		aliasAction("remove", currentIndex, index.ReadAlias),
		aliasAction("add", newIndexName, index.ReadAlias),
	))
	if err != nil {
		return err
	}
	osc.logger.Info("index reindexed",
		zap.String("from", currentIndex),
		zap.String("to", newIndexName),
	)
	return nil
}

func (osc *OpenSearchClient) Mapping(ctx context.Context, index models.IndexInfo) (IndexMapping, error) {
	res, err := osc.do(ctx, "get mapping", opensearchapi.MappingGetReq{Indices: []string{index.ReadAlias}}, http.StatusNotFound)
	if err != nil {
		return IndexMapping{}, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return IndexMapping{}, errors.Wrap(ErrIndexNotFound, index.IndexName)
	}
	return parseMappingResponse(res.Body)
}

func (osc *OpenSearchClient) Sample(ctx context.Context, index models.IndexInfo) (models.Attributes, error) {
	body, err := osc.search(ctx, index, sampleQuery)
	if errors.Is(err, ErrIndexNotFound) {
		return nil, errors.Wrap(ErrNoSample, index.IndexName)
	}
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseSampleResponse(body)
}

func (osc *OpenSearchClient) Search(ctx context.Context, index models.IndexInfo, query []byte) (json.RawMessage, error) {
	osc.logger.Debug("search", zap.String("index", index.ReadAlias), zap.ByteString("body", query))
	body, err := osc.search(ctx, index, query)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading search response")
	}
	return raw, nil
}

func (osc *OpenSearchClient) search(ctx context.Context, index models.IndexInfo, query []byte) (io.ReadCloser, error) {
	req := opensearchapi.SearchReq{Indices: []string{index.ReadAlias}, Body: bytes.NewReader(query)}
	res, err := osc.do(ctx, "search", req, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil, errors.Wrap(ErrIndexNotFound, index.IndexName)
	}
	return res.Body, nil
}
