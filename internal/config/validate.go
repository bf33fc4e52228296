package config

import (
	"errors"
	"fmt"

	"github.com/zsiec/cdg/internal/timeline"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Decoder.Tempo <= 0 {
		return fmt.Errorf("%w: decoder.tempo must be positive, got %d", ErrInvalid, c.Decoder.Tempo)
	}
	if c.Decoder.CompressionLevel < timeline.LevelNone || c.Decoder.CompressionLevel > timeline.LevelMax {
		return fmt.Errorf("%w: decoder.compression_level must be 0-9, got %d", ErrInvalid, c.Decoder.CompressionLevel)
	}
	if _, err := timeline.ParseCodec(c.Decoder.Codec); err != nil {
		return fmt.Errorf("%w: decoder.codec: %v", ErrInvalid, err)
	}
	if c.Render.Scale < 1 || c.Render.Scale > 8 {
		return fmt.Errorf("%w: render.scale must be 1-8, got %d", ErrInvalid, c.Render.Scale)
	}
	if c.Render.Every < 1 {
		return fmt.Errorf("%w: render.every must be at least 1", ErrInvalid)
	}
	if c.Render.Workers < 1 {
		return fmt.Errorf("%w: render.workers must be at least 1", ErrInvalid)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("%w: serve.addr must be set", ErrInvalid)
	}
	if c.Serve.CertValidityHours <= 0 {
		return fmt.Errorf("%w: serve.cert_validity_hours must be positive", ErrInvalid)
	}
	return nil
}
