package pool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/engine/pool"
	"go.trai.ch/zerr"
)

func packages(names ...string) []domain.Package {
	out := make([]domain.Package, len(names))
	for i, name := range names {
		out[i] = domain.Package{Name: name}
	}
	return out
}

func TestRun_AllPackagesVisited(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)

	err := pool.Run(t.Context(), packages("a", "b", "c", "d"), 3, func(_ context.Context, pkg domain.Package) error {
		mu.Lock()
		defer mu.Unlock()
		seen[pkg.Name]++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, seen)
}

func TestRun_FirstFailureWins(t *testing.T) {
	boom := zerr.New("boom")

	err := pool.Run(t.Context(), packages("a", "b", "c"), 2, func(_ context.Context, pkg domain.Package) error {
		if pkg.Name == "b" {
			return boom
		}
		return nil
	})

	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

func TestRun_SerialFallback(t *testing.T) {
	boom := zerr.New("boom")
	var calls atomic.Int32

	err := pool.Run(t.Context(), packages("a", "b", "c"), 1, func(_ context.Context, pkg domain.Package) error {
		calls.Add(1)
		if pkg.Name == "a" {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), calls.Load(), "serial mode stops at the first failure")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := pool.Run(ctx, packages("a", "b"), 4, func(_ context.Context, _ domain.Package) error {
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	err := pool.Run(t.Context(), nil, 4, func(_ context.Context, _ domain.Package) error {
		t.Fatal("action must not run")
		return nil
	})
	require.NoError(t, err)
}

func TestParallelism(t *testing.T) {
	t.Run("from DEB_BUILD_OPTIONS", func(t *testing.T) {
		t.Setenv("DEB_BUILD_OPTIONS", "nocheck parallel=7 nostrip")
		assert.Equal(t, 7, pool.Parallelism())
	})

	t.Run("ignores malformed option", func(t *testing.T) {
		t.Setenv("DEB_BUILD_OPTIONS", "parallel=many")
		assert.GreaterOrEqual(t, pool.Parallelism(), 1)
	})

	t.Run("defaults to cpu count", func(t *testing.T) {
		t.Setenv("DEB_BUILD_OPTIONS", "")
		assert.GreaterOrEqual(t, pool.Parallelism(), 1)
	})
}
