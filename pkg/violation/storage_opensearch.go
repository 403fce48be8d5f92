package violation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// OpenSearchStorage indexes violation records into OpenSearch for security
// analytics dashboards. It is write-mostly: Query supports the subset of
// criteria the review tooling needs.
type OpenSearchStorage struct {
	client *opensearch.Client
	index  string
}

// NewOpenSearchStorage creates an OpenSearch-backed violation storage.
// index defaults to "tenant-violations" when empty.
func NewOpenSearchStorage(client *opensearch.Client, index string) (*OpenSearchStorage, error) {
	if client == nil {
		return nil, errors.New("violation: opensearch client is required")
	}
	if index == "" {
		index = "tenant-violations"
	}
	return &OpenSearchStorage{client: client, index: index}, nil
}

// Store indexes a record, using the record id as document id so redelivery
// stays idempotent.
func (s *OpenSearchStorage) Store(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal violation record: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: record.ID.String(),
		Body:       bytes.NewReader(body),
	}

	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("%w: index returned %s", ErrStorageUnavailable, resp.Status())
	}

	return nil
}

// Query searches indexed records, newest first.
func (s *OpenSearchStorage) Query(ctx context.Context, criteria Criteria) ([]Record, error) {
	var filters []map[string]any
	if criteria.Kind != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"kind.keyword": string(criteria.Kind)},
		})
	}
	if criteria.TenantID != "" {
		filters = append(filters, map[string]any{
			"bool": map[string]any{
				"should": []map[string]any{
					{"term": map[string]any{"expected_tenant.keyword": criteria.TenantID}},
					{"term": map[string]any{"actual_tenant.keyword": criteria.TenantID}},
				},
				"minimum_should_match": 1,
			},
		})
	}
	if criteria.UserID != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"actor.user_id.keyword": criteria.UserID},
		})
	}
	if !criteria.Since.IsZero() || !criteria.Until.IsZero() {
		rangeFilter := map[string]any{}
		if !criteria.Since.IsZero() {
			rangeFilter["gte"] = criteria.Since
		}
		if !criteria.Until.IsZero() {
			rangeFilter["lte"] = criteria.Until
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"created_at": rangeFilter},
		})
	}

	size := criteria.Limit
	if size <= 0 {
		size = 100
	}

	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"filter": filters},
		},
		"sort": []map[string]any{
			{"created_at": map[string]any{"order": "desc"}},
		},
		"size": size,
		"from": criteria.Offset,
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	resp, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", ErrStorageUnavailable, resp.Status())
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source Record `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	records := make([]Record, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		r := hit.Source
		if criteria.MinSeverity != "" && !r.Severity.AtLeast(criteria.MinSeverity) {
			continue
		}
		records = append(records, r)
	}

	return records, nil
}
