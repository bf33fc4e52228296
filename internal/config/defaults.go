package config

const (
	defaultTempo             = 100
	defaultCompressionLevel  = 0
	defaultCodec             = "zlib"
	defaultRenderScale       = 1
	defaultRenderEvery       = 1
	defaultRenderWorkers     = 4
	defaultServeAddr         = ":4443"
	defaultServeAPIAddr      = ":4444"
	defaultServeLibraryDir   = "."
	defaultCertValidityHours = 14 * 24
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Decoder: Decoder{
			Tempo:            defaultTempo,
			CompressionLevel: defaultCompressionLevel,
			Codec:            defaultCodec,
		},
		Render: Render{
			Scale:   defaultRenderScale,
			Every:   defaultRenderEvery,
			Workers: defaultRenderWorkers,
		},
		Serve: Serve{
			Addr:              defaultServeAddr,
			APIAddr:           defaultServeAPIAddr,
			LibraryDir:        defaultServeLibraryDir,
			CertValidityHours: defaultCertValidityHours,
		},
	}
}
