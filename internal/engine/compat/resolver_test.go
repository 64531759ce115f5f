package compat_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports/mocks"
	"go.trai.ch/dh/internal/engine/compat"
	"go.uber.org/mock/gomock"
)

type manifestStub struct {
	m   *domain.Manifest
	err error
}

func (s *manifestStub) Manifest() (*domain.Manifest, error) {
	return s.m, s.err
}

func manifestWith(relation, field int) *manifestStub {
	return &manifestStub{m: &domain.Manifest{
		Source:         "foo",
		CompatRelation: relation,
		CompatField:    field,
		Packages:       []domain.Package{{Name: "foo"}},
	}}
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func newResolver(t *testing.T, src compat.ManifestSource, vars map[string]string) *compat.Resolver {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().WarnOnce(gomock.Any(), gomock.Any()).AnyTimes()
	return compat.NewResolverWithEnv(src, logger, env(vars))
}

func writeLegacyCompat(t *testing.T, content string) {
	t.Helper()
	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll("debian", 0o755))
	require.NoError(t, os.WriteFile("debian/compat", []byte(content), 0o644))
}

func TestResolver_Sources(t *testing.T) {
	t.Run("relation", func(t *testing.T) {
		t.Chdir(t.TempDir())
		level, err := newResolver(t, manifestWith(13, -1), nil).Level()
		require.NoError(t, err)
		assert.Equal(t, 13, level)
	})

	t.Run("field", func(t *testing.T) {
		t.Chdir(t.TempDir())
		level, err := newResolver(t, manifestWith(-1, 14), nil).Level()
		require.NoError(t, err)
		assert.Equal(t, 14, level)
	})

	t.Run("legacy file", func(t *testing.T) {
		writeLegacyCompat(t, "12\n")
		level, err := newResolver(t, manifestWith(-1, -1), nil).Level()
		require.NoError(t, err)
		assert.Equal(t, 12, level)
	})

	t.Run("legacy file whitespace tolerated", func(t *testing.T) {
		writeLegacyCompat(t, " 11 \n")
		level, err := newResolver(t, manifestWith(-1, -1), nil).Level()
		require.NoError(t, err)
		assert.Equal(t, 11, level)
	})

	t.Run("none declared", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := newResolver(t, manifestWith(-1, -1), nil).Level()
		require.ErrorIs(t, err, domain.ErrCompatUndeclared)
	})

	t.Run("legacy file plus relation is fatal", func(t *testing.T) {
		writeLegacyCompat(t, "12\n")
		_, err := newResolver(t, manifestWith(13, -1), nil).Level()
		require.ErrorIs(t, err, domain.ErrCompatConflict)
	})

	t.Run("legacy file at the ceiling is retired", func(t *testing.T) {
		writeLegacyCompat(t, "15\n")
		_, err := newResolver(t, manifestWith(-1, -1), nil).Level()
		require.ErrorIs(t, err, domain.ErrCompatFileRetired)
	})

	t.Run("garbage legacy file", func(t *testing.T) {
		writeLegacyCompat(t, "dozen\n")
		_, err := newResolver(t, manifestWith(-1, -1), nil).Level()
		require.ErrorIs(t, err, domain.ErrCompatInvalid)
	})
}

func TestResolver_Override(t *testing.T) {
	t.Run("DH_COMPAT wins", func(t *testing.T) {
		t.Chdir(t.TempDir())
		r := newResolver(t, manifestWith(13, -1), map[string]string{"DH_COMPAT": "11"})
		level, err := r.Level()
		require.NoError(t, err)
		assert.Equal(t, 11, level)
	})

	t.Run("DH_COMPAT applies with nothing declared", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := newResolver(t, manifestWith(-1, -1), map[string]string{"DH_COMPAT": "13"}).Level()
		// The declared-source check still runs; the override does not
		// paper over an undeclared level.
		require.ErrorIs(t, err, domain.ErrCompatUndeclared)
	})

	t.Run("garbage DH_COMPAT", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := newResolver(t, manifestWith(13, -1), map[string]string{"DH_COMPAT": "new"}).Level()
		require.ErrorIs(t, err, domain.ErrCompatInvalid)
	})
}

func TestResolver_Compat(t *testing.T) {
	t.Run("ordering", func(t *testing.T) {
		t.Chdir(t.TempDir())
		r := newResolver(t, manifestWith(12, -1), nil)

		atMost12, err := r.Compat(12, false)
		require.NoError(t, err)
		assert.True(t, atMost12)

		atMost11, err := r.Compat(11, false)
		require.NoError(t, err)
		assert.False(t, atMost11)
	})

	t.Run("below the floor is fatal", func(t *testing.T) {
		t.Chdir(t.TempDir())
		r := newResolver(t, manifestWith(4, -1), nil)
		_, err := r.Compat(10, false)
		require.ErrorIs(t, err, domain.ErrCompatTooLow)
	})

	t.Run("above the ceiling is fatal", func(t *testing.T) {
		t.Chdir(t.TempDir())
		r := newResolver(t, manifestWith(16, -1), nil)
		_, err := r.Compat(16, false)
		require.ErrorIs(t, err, domain.ErrCompatTooHigh)
	})

	t.Run("strict mode rejects scheduled-for-removal levels", func(t *testing.T) {
		t.Chdir(t.TempDir())
		r := newResolver(t, manifestWith(6, -1), map[string]string{"DH_FATAL_DEPRECATION": "1"})
		_, err := r.Compat(10, false)
		require.ErrorIs(t, err, domain.ErrCompatRemoval)
	})

	t.Run("deprecated level warns through WarnOnce", func(t *testing.T) {
		t.Chdir(t.TempDir())
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().WarnOnce("compat-deprecated", gomock.Any()).Times(2)
		r := compat.NewResolverWithEnv(manifestWith(9, -1), logger, env(nil))

		_, err := r.Compat(10, false)
		require.NoError(t, err)
		_, err = r.Compat(10, false)
		require.NoError(t, err)
	})

	t.Run("suppressed warnings skip enforcement", func(t *testing.T) {
		t.Chdir(t.TempDir())
		r := newResolver(t, manifestWith(4, -1), nil)
		atMost10, err := r.Compat(10, true)
		require.NoError(t, err)
		assert.True(t, atMost10)
	})
}
