package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullVersion(t *testing.T) {
	t.Parallel()
	version := FullVersion()
	assert.Equal(t, fmt.Sprintf("%v Copyright (C) %v", CFRONTVERSION, time.Now().Year()), version)
}

func TestCopyright(t *testing.T) {
	t.Parallel()
	copyright := Copyright()
	assert.Equal(t, fmt.Sprintf("Copyright (C) %v", time.Now().Year()), copyright)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("full document", func(t *testing.T) {
		t.Parallel()
		cfg, err := Decode(strings.NewReader(`
[preprocessor]
strict-conditionals = true
[preprocessor.macros]
DEBUG = "1"
NAME = "(2 + 3)"

[compiler]
listing = true
emit-llvm = true
`))
		require.NoError(t, err)
		assert.True(t, cfg.Preprocessor.StrictConditionals)
		assert.Equal(t, map[string]string{"DEBUG": "1", "NAME": "(2 + 3)"}, cfg.Preprocessor.Macros)
		assert.True(t, cfg.Compiler.Listing)
		assert.True(t, cfg.Compiler.EmitLLVM)
		assert.False(t, cfg.Compiler.Run)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		cfg, err := Decode(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.NotNil(t, cfg.Preprocessor.Macros)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := Decode(strings.NewReader("[preprocessor\n"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfront.toml")
	require.NoError(t, os.WriteFile(path, []byte("[compiler]\nrun = true\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Compiler.Run)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
