package runner

import (
	"context"
	"testing"
	"time"

	"github.com/mtc-analytics/patlens/pkg/common"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, 4)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := &types.CachedResult{
		Table: &types.ResultTable{
			Columns: []types.Column{{Name: "n", Type: types.ColumnTypeInteger}},
			Rows:    [][]any{{int64(7)}},
		},
		CachedAt: time.Now(),
		Duration: 120 * time.Millisecond,
	}
	require.NoError(t, c.Set(ctx, "fp1", entry))
	assert.Equal(t, 1, c.Len())

	got, ok, err := c.Get(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry.Table, got.Table)
}

func TestRedisCache_Roundtrip(t *testing.T) {
	rdb, err := common.NewRedisClientForTest()
	require.NoError(t, err)

	c := NewRedisCache(rdb, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := &types.CachedResult{
		Table: &types.ResultTable{
			Columns: []types.Column{
				{Name: "appln_auth", Type: types.ColumnTypeString},
				{Name: "n", Type: types.ColumnTypeInteger},
			},
			Rows: [][]any{{"EP", int64(120)}},
		},
		CachedAt: time.Now().UTC().Truncate(time.Second),
		Duration: 350 * time.Millisecond,
	}
	require.NoError(t, c.Set(ctx, "fp1", entry))

	got, ok, err := c.Get(ctx, "fp1")
	require.NoError(t, err)
	require.True(t, ok)

	// JSON decodes numeric cells as float64; shape and meaning survive
	assert.Equal(t, entry.Table.Columns, got.Table.Columns)
	require.Len(t, got.Table.Rows, 1)
	assert.Equal(t, "EP", got.Table.Rows[0][0])
	assert.Equal(t, float64(120), got.Table.Rows[0][1])
	assert.Equal(t, entry.Duration, got.Duration)
	assert.True(t, entry.CachedAt.Equal(got.CachedAt))
}
