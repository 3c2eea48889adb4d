package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-engine/internal/common/logger"
	"notification-engine/internal/models"
)

func newMiniredisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, 5*time.Minute, logger.NewTestLogger(t)), mr
}

func TestFetch_MissPopulatesCache(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	origin := &models.Workflow{ID: "wf-1", Name: "welcome", Active: true}
	calls := 0

	key := BuildWorkflowKey("env-1", "welcome")
	got, err := Fetch(ctx, store, "workflow", key, func(context.Context) (*models.Workflow, error) {
		calls++
		return origin, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-1", got.ID)
	assert.Equal(t, 1, calls)

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var cached models.Workflow
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "wf-1", cached.ID)
}

func TestFetch_HitSkipsOrigin(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	key := BuildWorkflowKey("env-1", "welcome")
	encoded, err := json.Marshal(&models.Workflow{ID: "wf-cached", Active: true})
	require.NoError(t, err)
	require.NoError(t, mr.Set(key, string(encoded)))

	got, err := Fetch(ctx, store, "workflow", key, func(context.Context) (*models.Workflow, error) {
		t.Fatal("origin must not be called on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-cached", got.ID)
}

func TestFetch_NilResultNotCached(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	key := BuildWorkflowKey("env-1", "unknown")
	got, err := Fetch(ctx, store, "workflow", key, func(context.Context) (*models.Workflow, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(key))
}

func TestFetch_RedisErrorFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(client, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	key := BuildTenantKey("env-1", "acme")
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, mustJSON(t, &models.Tenant{ID: "t-1", Identifier: "acme"}), time.Minute).SetErr(errors.New("connection refused"))

	got, err := Fetch(ctx, store, "tenant", key, func(context.Context) (*models.Tenant, error) {
		return &models.Tenant{ID: "t-1", Identifier: "acme"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
}

func TestFetch_OriginErrorPropagates(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	wantErr := errors.New("origin down")
	_, err := Fetch(ctx, store, "tenant", BuildTenantKey("env-1", "acme"), func(context.Context) (*models.Tenant, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestFetch_UndecodableEntryTreatedAsMiss(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	key := BuildWorkflowKey("env-1", "welcome")
	require.NoError(t, mr.Set(key, "{not-json"))

	got, err := Fetch(ctx, store, "workflow", key, func(context.Context) (*models.Workflow, error) {
		return &models.Workflow{ID: "wf-fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-fresh", got.ID)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
