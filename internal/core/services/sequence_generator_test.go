package services

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/adapters/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceGenerator_UsesBusinessDay(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Repos().SequenceRepo
	jakarta := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2026, 3, 31, 16, 59, 0, 0, time.UTC)
	gen := NewSequenceGenerator(jakarta, func() time.Time { return now })

	n, err := gen.Generate(ctx, repo, "SWD")
	require.NoError(t, err)
	assert.Equal(t, "SWD-20260331-0001", n)

	now = now.Add(2 * time.Minute) // 00:01 WIB on 1 April
	n, err = gen.Generate(ctx, repo, "SWD")
	require.NoError(t, err)
	assert.Equal(t, "SWD-20260401-0001", n)

	n, err = gen.Generate(ctx, repo, "SWD")
	require.NoError(t, err)
	assert.Equal(t, "SWD-20260401-0002", n)
}

func TestSequenceGenerator_PadsToFourDigitsOnly(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Repos().SequenceRepo
	gen := NewSequenceGenerator(time.UTC, func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) })

	var last string
	for i := 0; i < 10000; i++ {
		var err error
		last, err = gen.Generate(ctx, repo, "DEP")
		require.NoError(t, err)
	}
	assert.Equal(t, "DEP-20260102-10000", last)
}
