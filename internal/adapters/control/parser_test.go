package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/dh/internal/adapters/control"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeControl(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "control")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newParser(t *testing.T, profiles string) *control.Parser {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().WarnOnce(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return control.NewParser(logger, domain.NewProfileSet(profiles))
}

func TestParser_Parse(t *testing.T) {
	path := writeControl(t, `Source: foo
Section: libs
Build-Depends: debhelper-compat (= 13),
 dh-sequence-python3,
 libssl-dev (>= 3.0) [linux-any]

Package: libfoo1
Architecture: any
Multi-Arch: same
Depends: ${shlibs:Depends}, ${misc:Depends}

Package: foo-doc
Architecture: all
Section: doc
`)

	m, err := newParser(t, "").Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "foo", m.Source)
	assert.Equal(t, "libs", m.SourceSection)
	assert.Equal(t, 13, m.CompatRelation)
	assert.Equal(t, -1, m.CompatField)
	assert.Equal(t, []string{"python3"}, m.Sequences)
	assert.Len(t, m.BuildDepends, 3)

	require.Len(t, m.Packages, 2)
	lib := m.Packages[0]
	assert.Equal(t, "libfoo1", lib.Name)
	assert.Equal(t, "any", lib.Architecture)
	assert.Equal(t, domain.MultiArchSame, lib.MultiArch)
	assert.Equal(t, "libs", lib.Section, "binary stanza inherits the source section")
	assert.Equal(t, domain.DefaultPackageType, lib.Type)
	assert.Equal(t, domain.BuildForHost, lib.BuildFor)
	assert.Equal(t, "${shlibs:Depends}, ${misc:Depends}", lib.Extra["Depends"])

	doc := m.Packages[1]
	assert.Equal(t, "doc", doc.Section, "explicit section wins over inherited")
	assert.True(t, doc.ArchIndependent())
}

func TestParser_StanzaEdges(t *testing.T) {
	t.Run("comment lines vanish", func(t *testing.T) {
		path := writeControl(t, `# generated, do not edit
Source: foo
Build-Depends: debhelper-compat (= 13)
# trailing comment inside stanza

Package: foo
Architecture: all
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, "foo", m.Source)
		assert.Len(t, m.Packages, 1)
	})

	t.Run("comment at EOF does not swallow final stanza", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo
Architecture: all
# last line is a comment`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		require.Len(t, m.Packages, 1)
		assert.Equal(t, "foo", m.Packages[0].Name)
	})

	t.Run("whitespace-dot continuation folds to empty", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo
Architecture: all
Description: short
 .
 after the break
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, "short\n\nafter the break", m.Packages[0].Extra["Description"])
	})

	t.Run("continuation before any field is fatal", func(t *testing.T) {
		path := writeControl(t, " dangling continuation\nSource: foo\n")
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrContinuationOutsideStanza)
	})

	t.Run("duplicate field within stanza is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Source: bar
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrDuplicateField)
	})

	t.Run("malformed field line is fatal", func(t *testing.T) {
		path := writeControl(t, "Source foo without colon\n")
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrControlParse)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := newParser(t, "").Parse(filepath.Join(t.TempDir(), "control"))
		require.ErrorIs(t, err, domain.ErrControlMissing)
	})
}

func TestParser_PackageValidation(t *testing.T) {
	t.Run("duplicate package is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo
Architecture: all

Package: foo
Architecture: any
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrDuplicatePackage)
	})

	t.Run("invalid package name is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: Foo_Bar
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrInvalidPackageName)
	})

	t.Run("no binary packages is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrControlParse)
	})

	t.Run("missing source field is fatal", func(t *testing.T) {
		path := writeControl(t, `Maintainer: nobody

Package: foo
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrMissingSource)
	})

	t.Run("bad build-for type is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo
Architecture: all
X-DH-Build-For-Type: native
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrInvalidBuildForType)
	})

	t.Run("malformed build-profiles formula is fatal at parse time", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo
Architecture: all
Build-Profiles: not-a-formula
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrBuildProfiles)
	})

	t.Run("defaulted architecture", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, "any", m.Packages[0].Architecture)
	})
}

func TestParser_PackageType(t *testing.T) {
	t.Run("package-type", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo-udeb
Architecture: all
Package-Type: udeb
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, domain.PackageType("udeb"), m.Packages[0].Type)
	})

	t.Run("deprecated XC-Package-Type still parses", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().WarnOnce(gomock.Any(), gomock.Any()).Times(1)
		parser := control.NewParser(logger, domain.NewProfileSet(""))

		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo-udeb
Architecture: all
XC-Package-Type: udeb
`)
		m, err := parser.Parse(path)
		require.NoError(t, err)
		assert.Equal(t, domain.PackageType("udeb"), m.Packages[0].Type)
	})

	t.Run("two type fields is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)

Package: foo-udeb
Architecture: all
Package-Type: udeb
XB-Package-Type: udeb
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrPackageTypeRedefined)
	})
}

func TestParser_CompatDeclarations(t *testing.T) {
	t.Run("x-dh-compat alone", func(t *testing.T) {
		path := writeControl(t, `Source: foo
X-DH-Compat: 14

Package: foo
Architecture: all
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, -1, m.CompatRelation)
		assert.Equal(t, 14, m.CompatField)
	})

	t.Run("found after version operator relations", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: libbar-dev (<< 2),
 libbaz-dev (<= 3) [linux-any],
 libqux-dev (>= 1) <!nocheck>,
 debhelper-compat (= 13),
 dh-sequence-python3

Package: foo
Architecture: all
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, 13, m.CompatRelation)
		assert.Equal(t, []string{"python3"}, m.Sequences)
		assert.Len(t, m.BuildDepends, 5)
	})

	t.Run("relation and field together is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13)
X-DH-Compat: 13

Package: foo
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrCompatConflict)
	})

	t.Run("compat in Build-Depends-Indep is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends-Indep: debhelper-compat (= 13)

Package: foo
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrCompatRelation)
	})

	t.Run("compat in an alternative is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13) | debhelper

Package: foo
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrCompatRelation)
	})

	t.Run("inexact version is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (>= 13)

Package: foo
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrCompatRelation)
	})

	t.Run("declared twice in build-depends is fatal", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13), debhelper-compat (= 12)

Package: foo
Architecture: all
`)
		_, err := newParser(t, "").Parse(path)
		require.ErrorIs(t, err, domain.ErrCompatConflict)
	})
}

func TestParser_Sequences(t *testing.T) {
	t.Run("profile-restricted sequence follows the active set", func(t *testing.T) {
		content := `Source: foo
Build-Depends: debhelper-compat (= 13),
 dh-sequence-sphinxdoc <!nodoc>,
 dh-sequence-python3

Package: foo
Architecture: all
`
		m, err := newParser(t, "").Parse(writeControl(t, content))
		require.NoError(t, err)
		assert.Equal(t, []string{"sphinxdoc", "python3"}, m.Sequences)

		m, err = newParser(t, "nodoc").Parse(writeControl(t, content))
		require.NoError(t, err)
		assert.Equal(t, []string{"python3"}, m.Sequences)
	})

	t.Run("sequences deduplicate across fields", func(t *testing.T) {
		path := writeControl(t, `Source: foo
Build-Depends: debhelper-compat (= 13), dh-sequence-python3
Build-Depends-Indep: dh-sequence-python3

Package: foo
Architecture: all
`)
		m, err := newParser(t, "").Parse(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"python3"}, m.Sequences)
	})
}
