package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/graph"
	"github.com/cwbudde/algo-binaural/dsp/interp"
	"github.com/cwbudde/algo-binaural/wav"
)

// DefaultOutput is the file name used when none is configured.
const DefaultOutput = "binaural_audio.wav"

// RenderConfig stores offline render settings.
type RenderConfig struct {
	BlockSize int `yaml:"block_size"`

	// Interpolation is the fractional delay read mode: linear or hermite.
	Interpolation string `yaml:"interpolation"`
}

// ModulationConfig stores modulation stage settings.
type ModulationConfig struct {
	DepthSeconds    float64 `yaml:"depth_seconds"`
	MixGain         float64 `yaml:"mix_gain"`
	MaxDelaySeconds float64 `yaml:"max_delay_seconds"`
}

// EncoderConfig stores WAV encoder settings.
type EncoderConfig struct {
	Dither     bool  `yaml:"dither"`
	DitherSeed int64 `yaml:"dither_seed"`
}

// ServerConfig stores HTTP service settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	CacheSize      int    `yaml:"cache_size"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Config stores the application configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Band       string           `yaml:"band"`
	Output     string           `yaml:"output"`
	Render     RenderConfig     `yaml:"render"`
	Modulation ModulationConfig `yaml:"modulation"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	Server     ServerConfig     `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Band:     "alpha",
		Output:   DefaultOutput,
		Render: RenderConfig{
			BlockSize:     core.DefaultBlockSize,
			Interpolation: interp.Linear.String(),
		},
		Modulation: ModulationConfig{
			DepthSeconds:    binaural.DefaultDepthSeconds,
			MixGain:         binaural.DefaultMixGain,
			MaxDelaySeconds: binaural.DefaultMaxDelaySeconds,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			CacheSize:      64,
			MaxUploadBytes: 64 << 20,
		},
	}
}

// LoadConfig reads the YAML file at filePath over the defaults. An empty
// path returns the defaults. Environment overrides are applied last.
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}

		err = yaml.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", filePath, err)
		}
	}

	cfg.applyEnv()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = envStr("BINAURAL_LOG_LEVEL", c.LogLevel)
	c.Band = envStr("BINAURAL_BAND", c.Band)
	c.Server.Addr = envStr("BINAURAL_ADDR", c.Server.Addr)
	c.Server.CacheSize = envInt("BINAURAL_CACHE_SIZE", c.Server.CacheSize)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error: %q", c.LogLevel))
	}

	_, err := binaural.LookupBand(c.Band)
	if err != nil {
		errs = append(errs, err)
	}

	if c.Output == "" {
		errs = append(errs, errors.New("output must not be empty"))
	}

	if c.Render.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("render.block_size must be > 0: %d", c.Render.BlockSize))
	}

	_, err = c.interpolation()
	if err != nil {
		errs = append(errs, err)
	}

	_, err = binaural.NewModulationStage(0, c.StageOptions()...)
	if err != nil {
		errs = append(errs, err)
	}

	if c.Server.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("server.cache_size must be > 0: %d", c.Server.CacheSize))
	}

	if c.Server.MaxUploadBytes <= wav.HeaderSize {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must exceed %d: %d", wav.HeaderSize, c.Server.MaxUploadBytes))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}

	return nil
}

// StageOptions converts the modulation settings. An unknown interpolation
// name is left to Validate and omitted here.
func (c *Config) StageOptions() []binaural.StageOption {
	opts := []binaural.StageOption{
		binaural.WithDepthSeconds(c.Modulation.DepthSeconds),
		binaural.WithMixGain(c.Modulation.MixGain),
		binaural.WithMaxDelaySeconds(c.Modulation.MaxDelaySeconds),
	}

	if mode, err := c.interpolation(); err == nil {
		opts = append(opts, binaural.WithInterpolation(mode))
	}

	return opts
}

func (c *Config) interpolation() (interp.Mode, error) {
	switch c.Render.Interpolation {
	case "", interp.Linear.String():
		return interp.Linear, nil
	case interp.Hermite.String():
		return interp.Hermite, nil
	default:
		return 0, fmt.Errorf("render.interpolation must be linear or hermite: %q", c.Render.Interpolation)
	}
}

// EncoderOptions converts the encoder settings.
func (c *Config) EncoderOptions() []wav.EncoderOption {
	if !c.Encoder.Dither {
		return nil
	}

	return []wav.EncoderOption{wav.WithDither(c.Encoder.DitherSeed)}
}

// ProcessorOptions converts the render settings.
func (c *Config) ProcessorOptions() []core.ProcessorOption {
	return []core.ProcessorOption{core.WithBlockSize(c.Render.BlockSize)}
}

// Renderer builds a binaural renderer from the configuration.
func (c *Config) Renderer(logger *zap.Logger) *binaural.Renderer {
	return binaural.NewRenderer(
		binaural.WithEngine(graph.NewOfflineRenderer(nil, c.ProcessorOptions()...)),
		binaural.WithStageOptions(c.StageOptions()...),
		binaural.WithLogger(logger),
	)
}

// Pipeline builds the WAV-to-WAV pipeline from the configuration.
func (c *Config) Pipeline(logger *zap.Logger) *binaural.Pipeline {
	return binaural.NewPipeline(wav.Decoder{}, c.Renderer(logger), wav.NewEncoder(c.EncoderOptions()...))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return fallback
}
