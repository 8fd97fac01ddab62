package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/mmrzaf/fixturegen/internal/infra/targets"
	"go.uber.org/multierr"
)

var indexNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,254}$`)

// ElasticsearchTarget writes each collection to an index of the same name.
// Document ids are assigned client side so they can be removed by id later,
// including when a bulk request only partly succeeds.
type ElasticsearchTarget struct {
	baseURL string
	client  *http.Client
}

func NewElasticsearchTarget(dsn string) *ElasticsearchTarget {
	return &ElasticsearchTarget{
		baseURL: normalizeURL(dsn),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *ElasticsearchTarget) Connect(ctx context.Context) error {
	_, err := t.ServerVersion(ctx)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	return nil
}

func (t *ElasticsearchTarget) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (t *ElasticsearchTarget) Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error) {
	indexName, err := toIndexName(collection)
	if err != nil {
		return nil, err
	}
	docs := targets.Assign(records)
	if len(docs) == 0 {
		return targets.Result(docs), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		if err := enc.Encode(map[string]any{"index": map[string]string{"_index": indexName, "_id": d.ID}}); err != nil {
			return nil, err
		}
		if err := enc.Encode(d.Body()); err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
	}

	status, body, err := t.do(ctx, http.MethodPost, "/_bulk?refresh=true", "application/x-ndjson", &buf)
	if err != nil {
		return nil, t.discard(ctx, collection, docs, err)
	}
	if status < 200 || status > 299 {
		return nil, t.discard(ctx, collection, docs,
			fmt.Errorf("elasticsearch bulk insert failed: status=%d body=%s", status, strings.TrimSpace(string(body))))
	}
	var bulkResp bulkResponse
	if err := json.Unmarshal(body, &bulkResp); err != nil {
		return nil, t.discard(ctx, collection, docs, fmt.Errorf("decode bulk response: %w", err))
	}
	if bulkResp.Errors {
		return nil, t.discard(ctx, collection, docs, bulkError(bulkResp))
	}
	return targets.Result(docs), nil
}

func bulkError(resp bulkResponse) error {
	for _, item := range resp.Items {
		for _, result := range item {
			if result.Error != nil {
				return fmt.Errorf("elasticsearch bulk insert returned errors: %s: %s", result.Error.Type, result.Error.Reason)
			}
		}
	}
	return fmt.Errorf("elasticsearch bulk insert returned errors")
}

// discard deletes every document of a failed bulk request by its assigned
// id, so the items that did get indexed are not left behind untracked.
func (t *ElasticsearchTarget) discard(ctx context.Context, collection string, docs []targets.Document, cause error) error {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	if _, err := t.Remove(context.WithoutCancel(ctx), collection, ids); err != nil {
		return multierr.Append(cause, fmt.Errorf("discard partially indexed documents: %w", err))
	}
	return cause
}

func (t *ElasticsearchTarget) Remove(ctx context.Context, collection string, ids []string) (int64, error) {
	indexName, err := toIndexName(collection)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	payload, err := json.Marshal(map[string]any{
		"query": map[string]any{"ids": map[string]any{"values": ids}},
	})
	if err != nil {
		return 0, err
	}

	path := "/" + indexName + "/_delete_by_query?refresh=true&conflicts=proceed"
	status, body, err := t.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status < 200 || status > 299 {
		return 0, fmt.Errorf("elasticsearch delete failed: status=%d body=%s", status, strings.TrimSpace(string(body)))
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode delete response: %w", err)
	}
	return resp.Deleted, nil
}

func (t *ElasticsearchTarget) ServerVersion(ctx context.Context) (string, error) {
	status, body, err := t.do(ctx, http.MethodGet, "/", "", nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", fmt.Errorf("status=%d body=%s", status, strings.TrimSpace(string(body)))
	}
	var root struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.Unmarshal(body, &root); err != nil {
		return "", err
	}
	return root.Version.Number, nil
}

func (t *ElasticsearchTarget) do(ctx context.Context, method, path, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func normalizeURL(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "http://localhost:9200"
	}
	if strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://") {
		return strings.TrimRight(dsn, "/")
	}
	return "http://" + strings.TrimRight(dsn, "/")
}

// toIndexName rejects collection names Elasticsearch would refuse or fold
// into another index. Names are used as given, never lower-cased.
func toIndexName(name string) (string, error) {
	if !indexNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid elasticsearch index name %q: use lower-case letters, digits, '_', '-' or '.'", name)
	}
	return name, nil
}
