package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/cfront/src/lerrors"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()
	for expected, name := range LogLevelNames {
		lvl, err := ParseLogLevel(name)
		require.NoError(t, err)
		assert.Equal(t, expected, lvl)
	}
	lvl, err := ParseLogLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, LogLevelVerbose, lvl)
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	cause := errors.New("use of undeclared identifier b")
	tag, pos, msg := describe(&lerrors.Error{Kind: lerrors.CompileErr, Filename: "a.c", Line: 2, Column: 5, Err: cause})
	assert.Equal(t, "Compile Error", tag)
	assert.Equal(t, "a.c:2:5", pos)
	assert.Equal(t, cause, msg)

	tag, pos, _ = describe(&lerrors.Error{Kind: lerrors.RuntimeErr, Filename: "a.c", Err: cause})
	assert.Equal(t, "Runtime Error", tag)
	assert.Equal(t, "a.c", pos)

	tag, pos, msg = describe(cause)
	assert.Equal(t, "Error", tag)
	assert.Empty(t, pos)
	assert.Equal(t, cause, msg)
}

func TestCodeSelection(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "test.c")
	require.NoError(t, os.WriteFile(path, []byte("int a;\n\ta = b;\n"), 0o600))

	lines, err := codeSelection(path, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"2 |  ", "    a = b;", "          ^"}, lines)

	_, err = codeSelection(path, 9, 1)
	assert.Error(t, err)
	_, err = codeSelection(filepath.Join(t.TempDir(), "missing.c"), 1, 1)
	assert.Error(t, err)
}

func TestLogger_ErrorCount(t *testing.T) {
	t.Parallel()
	logger := NewLogger(LogLevelSilent)
	logger.LogError(errors.New("one"))
	logger.LogError(errors.New("two"))
	logger.LogWarning("Warning", "ignored")
	logger.LogInfo("Info", "ignored")
	assert.Equal(t, 2, logger.ErrorCount())
}
