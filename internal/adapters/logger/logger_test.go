package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/dh/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to an in-memory buffer. NO_COLOR
// forces the plain color profile so output is deterministic.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	return logger.NewWithOptions(buf, "dh_test").(*logger.Logger), buf
}

func TestLogger_Messages(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(lg *logger.Logger) { lg.Info("installing files") },
			goldenName: "info_basic",
		},
		{
			name:       "warn",
			log:        func(lg *logger.Logger) { lg.Warn("compat level 9 is deprecated") },
			goldenName: "warn_basic",
		},
		{
			name:       "multiline info",
			log:        func(lg *logger.Logger) { lg.Info("line1\nline2") },
			goldenName: "info_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Verbosity(t *testing.T) {
	t.Run("debug is suppressed by default", func(t *testing.T) {
		t.Setenv("DH_VERBOSE", "")
		t.Setenv("DH_QUIET", "")
		lg, buf := newTestLogger(t)
		lg.Debug("resolved compat level 13")
		assert.Empty(t, buf.String())
	})

	t.Run("DH_VERBOSE enables debug", func(t *testing.T) {
		t.Setenv("DH_VERBOSE", "1")
		t.Setenv("DH_QUIET", "")
		lg, buf := newTestLogger(t)
		lg.Debug("resolved compat level 13")
		assert.Equal(t, "dh_test: resolved compat level 13\n", buf.String())
	})

	t.Run("DH_QUIET drops info but keeps warnings", func(t *testing.T) {
		t.Setenv("DH_VERBOSE", "")
		t.Setenv("DH_QUIET", "1")
		lg, buf := newTestLogger(t)
		lg.Info("installing files")
		assert.Empty(t, buf.String())
		lg.Warn("still shown")
		assert.Equal(t, "dh_test: still shown\n", buf.String())
	})
}

func TestLogger_WarnOnce(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.WarnOnce("compat-9", "compat level 9 is deprecated")
	lg.WarnOnce("compat-9", "compat level 9 is deprecated")
	lg.WarnOnce("legacy-pkgfile", "unprefixed config files are deprecated")

	assert.Equal(t,
		"dh_test: compat level 9 is deprecated\n"+
			"dh_test: unprefixed config files are deprecated\n",
		buf.String())
}

func TestLogger_Error(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(errors.New("debian/control has no binary package stanza"))
		assert.Equal(t, "dh_test: error: debian/control has no binary package stanza\n", buf.String())
	})

	t.Run("nil error logs nothing", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(nil)
		assert.Empty(t, buf.String())
	})

	t.Run("wrapped chain lists causes", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		err := zerr.Wrap(
			zerr.Wrap(errors.New("no such file or directory"), "cannot read manifest"),
			"cannot compute package selection",
		)
		lg.Error(err)

		out := buf.String()
		assert.Contains(t, out, "dh_test: error: cannot compute package selection")
		assert.Contains(t, out, "Caused by:")
		assert.Contains(t, out, "- cannot read manifest")
		assert.Contains(t, out, "- no such file or directory")
	})

	t.Run("stdlib wrapped error prints in full", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(fmt.Errorf("reading config: %w", errors.New("permission denied")))

		out := buf.String()
		assert.Contains(t, out, "dh_test: error: reading config: permission denied")
		assert.NotContains(t, out, "Caused by:")
	})
}

func TestLogger_ConcurrentWarnOnce(t *testing.T) {
	lg, _ := newTestLogger(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lg.WarnOnce("key", "warned")
			lg.Info("info")
		}()
	}
	wg.Wait()
}
