package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-engine/internal/models"
)

func TestClientTrigger(t *testing.T) {
	var captured struct {
		auth string
		body map[string]interface{}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key")
	err := client.Trigger(context.Background(), "in-app-invite-team-member-nudge",
		models.Recipient{SubscriberID: "user-1", Email: "ada@gmail.com"},
		map[string]interface{}{"webhookUrl": "https://hooks.example.com"})
	require.NoError(t, err)

	assert.Equal(t, "ApiKey secret-key", captured.auth)
	assert.Equal(t, "in-app-invite-team-member-nudge", captured.body["name"])
	recipients := captured.body["to"].([]interface{})
	require.Len(t, recipients, 1)
	assert.Equal(t, "user-1", recipients[0].(map[string]interface{})["subscriberId"])
}

func TestClientTriggerRejectsFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong-key")
	err := client.Trigger(context.Background(), "nudge", models.Recipient{SubscriberID: "user-1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
