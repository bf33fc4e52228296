package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Decoder holds settings applied to every Parser.
type Decoder struct {
	Tempo            int    `toml:"tempo"`
	CompressionLevel int    `toml:"compression_level"`
	Codec            string `toml:"codec"`
}

// Render holds settings for the render command.
type Render struct {
	Scale   int  `toml:"scale"`
	Every   int  `toml:"every"`
	Stamp   bool `toml:"stamp"`
	Workers int  `toml:"workers"`
}

// Serve holds settings for the frame server.
type Serve struct {
	Addr              string `toml:"addr"`
	APIAddr           string `toml:"api_addr"`
	LibraryDir        string `toml:"library_dir"`
	CertValidityHours int    `toml:"cert_validity_hours"`
}

// Config is the complete cdg configuration.
type Config struct {
	Decoder Decoder `toml:"decoder"`
	Render  Render  `toml:"render"`
	Serve   Serve   `toml:"serve"`
}

// Sample returns an annotated example configuration file.
func Sample() string {
	return sampleConfig
}

// Load reads path (if it exists), applies environment overrides and
// validates the result. An empty path or a missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	intVars := []struct {
		key string
		dst *int
	}{
		{"CDG_TEMPO", &c.Decoder.Tempo},
		{"CDG_COMPRESSION", &c.Decoder.CompressionLevel},
	}
	for _, v := range intVars {
		s, ok := lookup(v.key)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, v.key, s)
		}
		*v.dst = n
	}

	strVars := []struct {
		key string
		dst *string
	}{
		{"CDG_CODEC", &c.Decoder.Codec},
		{"CDG_ADDR", &c.Serve.Addr},
		{"CDG_API_ADDR", &c.Serve.APIAddr},
		{"CDG_LIBRARY", &c.Serve.LibraryDir},
	}
	for _, v := range strVars {
		if s, ok := lookup(v.key); ok && strings.TrimSpace(s) != "" {
			*v.dst = strings.TrimSpace(s)
		}
	}
	return nil
}
