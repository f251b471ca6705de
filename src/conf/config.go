package conf

import (
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// DefaultFilename is the configuration file looked up in the working directory
// when no explicit path is given.
const DefaultFilename = "cfront.toml"

type (
	// Config is the decoded configuration file.
	Config struct {
		Preprocessor Preprocessor `toml:"preprocessor"`
		Compiler     Compiler     `toml:"compiler"`
	}
	// Preprocessor configures macro evaluation.
	Preprocessor struct {
		// StrictConditionals makes an identifier that is neither a macro nor an
		// integer literal an error inside #if instead of evaluating to 0.
		StrictConditionals bool              `toml:"strict-conditionals"`
		Macros             map[string]string `toml:"macros,omitempty"`
	}
	// Compiler configures the output of the build command.
	Compiler struct {
		Listing  bool `toml:"listing"`
		EmitLLVM bool `toml:"emit-llvm"`
		Run      bool `toml:"run"`
	}
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{Preprocessor: Preprocessor{Macros: map[string]string{}}}
}

// Load reads the configuration at path. An empty path loads DefaultFilename if
// it exists and otherwise returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFilename); err != nil {
			return Default(), nil
		}
		path = DefaultFilename
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer func() { _ = f.Close() }()
	cfg, err := Decode(f)
	return cfg, errors.Wrapf(err, "config %s", path)
}

// Decode parses a TOML configuration document.
func Decode(src io.Reader) (*Config, error) {
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(buf, cfg); err != nil {
		return nil, err
	}
	if cfg.Preprocessor.Macros == nil {
		cfg.Preprocessor.Macros = map[string]string{}
	}
	return cfg, nil
}
