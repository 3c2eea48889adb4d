// internal/storage/elastic/notifications.go
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// NotificationFeed answers whether an organization has ever produced a
// notification, backed by the delivery pipeline's notification index.
type NotificationFeed struct {
	client *elasticsearch.Client
	index  string
}

func NewNotificationFeed(client *elasticsearch.Client, index string) *NotificationFeed {
	return &NotificationFeed{client: client, index: index}
}

// HasAny runs a count query scoped to the organization and environment.
func (f *NotificationFeed) HasAny(ctx context.Context, organizationID, environmentID string) (bool, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"organizationId": organizationID}},
					map[string]interface{}{"term": map[string]interface{}{"environmentId": environmentID}},
				},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return false, fmt.Errorf("encode notification count query: %w", err)
	}

	res, err := f.client.Count(
		f.client.Count.WithContext(ctx),
		f.client.Count.WithIndex(f.index),
		f.client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return false, fmt.Errorf("notification count query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("notification count query: %s", res.Status())
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode notification count response: %w", err)
	}
	return result.Count > 0, nil
}
