package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/safetyshield/guardian/internal/core"
)

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := NewMemoryStore(zaptest.NewLogger(t))

	record, ok, err := s.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, record)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore(zaptest.NewLogger(t))
	ctx := context.Background()

	first := core.NewSafetyRecord("https://a.example", &core.SiteRisk{Risk: 0.1})
	second := core.NewSafetyRecord("https://b.example", &core.SiteRisk{Risk: 0.9})

	require.NoError(t, s.Put(ctx, 1, first))
	require.NoError(t, s.Put(ctx, 1, second))

	record, ok, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://b.example", record.URL, "last writer wins")
	assert.Equal(t, core.LevelDanger, record.Level)
}

func TestMemoryStore_TabsAreIndependent(t *testing.T) {
	s := NewMemoryStore(zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, 1, core.NewSafetyRecord("https://a.example", &core.SiteRisk{Risk: 0.1})))

	_, ok, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}
