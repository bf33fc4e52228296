package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zsiec/cdg/cdg"
	"github.com/zsiec/cdg/internal/archive"
	"github.com/zsiec/cdg/internal/config"
	"github.com/zsiec/cdg/internal/timeline"
)

type commandContext struct {
	configFlag string
	debug      bool
	jsonOut    bool
	log        *slog.Logger

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(strings.TrimSpace(c.configFlag))
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	if c.log == nil {
		return slog.Default()
	}
	return c.log
}

// parserOptions builds decoder options from the configuration. A positive
// tempo overrides the configured one.
func (c *commandContext) parserOptions(tempo int) ([]cdg.Option, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	codec, err := timeline.ParseCodec(cfg.Decoder.Codec)
	if err != nil {
		return nil, err
	}
	if tempo <= 0 {
		tempo = cfg.Decoder.Tempo
	}
	return []cdg.Option{
		cdg.WithLogger(c.logger()),
		cdg.WithCompression(codec, cfg.Decoder.CompressionLevel),
		cdg.WithTempo(tempo),
	}, nil
}

// decode loads ref and decodes it to completion.
func (c *commandContext) decode(ref string, opts []cdg.Option) (*cdg.Parser, archive.Source, error) {
	data, src, err := archive.Load(ref)
	if err != nil {
		return nil, src, err
	}
	p := cdg.NewParser(opts...)
	if !p.Open(data) {
		return nil, src, fmt.Errorf("%s: %w", src, cdg.ErrEmptyInput)
	}
	p.Process()
	return p, src, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
