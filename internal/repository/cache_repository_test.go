package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
	"github.com/AHSANooo/Clashes-Detector/pkg/cache"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
)

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(nil)
	ctx := context.Background()
	doc := models.Document{Sheets: []models.Sheet{{Name: "Monday", Rows: [][]models.Cell{{{Text: "Room"}}}}}}

	require.NoError(t, repo.Set(ctx, "grid:file", doc, time.Hour))

	var got models.Document
	require.NoError(t, repo.Get(ctx, "grid:file", &got))
	assert.Equal(t, doc, got)

	require.NoError(t, repo.DeleteByPattern(ctx, "grid:*"))
	err := repo.Get(ctx, "grid:file", &got)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestMemoryCacheRepositoryExpiry(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	repo := NewMemoryCacheRepository(cache.NewMemory(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "v", time.Minute))
	now = now.Add(time.Minute)

	var got string
	assert.ErrorIs(t, repo.Get(ctx, "k", &got), appErrors.ErrCacheMiss)
}

func TestRedisCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisCacheRepository(nil, nil)
	ctx := context.Background()

	var got string
	assert.ErrorIs(t, repo.Get(ctx, "k", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Close())
}
