package core

// DefaultBlockSize is the number of frames processed per render quantum.
const DefaultBlockSize = 128

// DefaultSampleRate is assumed when a processor is configured without one.
const DefaultSampleRate = 48000

// ProcessorConfig carries the settings shared by block processors.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption adjusts a ProcessorConfig. Out-of-range values are ignored.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns DefaultSampleRate and DefaultBlockSize.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize}
}

// WithSampleRate sets a positive sample rate in Hz.
func WithSampleRate(hz float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if hz > 0 {
			cfg.SampleRate = hz
		}
	}
}

// WithBlockSize sets a positive render quantum in frames.
func WithBlockSize(frames int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if frames > 0 {
			cfg.BlockSize = frames
		}
	}
}

// ApplyProcessorOptions folds opts over the defaults. Nil options are skipped.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
