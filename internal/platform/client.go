// internal/platform/client.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "notification-engine/internal/common/http"
	"notification-engine/internal/models"
)

// Client triggers notifications against the platform's own trigger endpoint.
// It is used for self-originated events such as the invite nudge.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *commonhttp.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: commonhttp.NewClient(30 * time.Second),
	}
}

// Trigger fires one notification trigger on behalf of the platform.
func (c *Client) Trigger(ctx context.Context, identifier string, to models.Recipient, payload map[string]interface{}) error {
	body := map[string]interface{}{
		"name":    identifier,
		"to":      []models.Recipient{to},
		"payload": payload,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		responseBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trigger request failed (status %d): %s", resp.StatusCode, string(responseBody))
	}
	return nil
}
