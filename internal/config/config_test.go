package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/dsp/graph"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "alpha", cfg.Band)
	assert.Equal(t, "binaural_audio.wav", cfg.Output)
	assert.Equal(t, 128, cfg.Render.BlockSize)
	assert.InDelta(t, 0.0002, cfg.Modulation.DepthSeconds, 0)
	assert.InDelta(t, 0.5, cfg.Modulation.MixGain, 0)
	assert.Nil(t, cfg.EncoderOptions())
	assert.Equal(t, "linear", cfg.Render.Interpolation)
	assert.Len(t, cfg.StageOptions(), 4)
	assert.Len(t, cfg.ProcessorOptions(), 1)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
band: theta
render:
  block_size: 256
  interpolation: hermite
modulation:
  depth_seconds: 0
encoder:
  dither: true
  dither_seed: 42
server:
  addr: "127.0.0.1:9000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "theta", cfg.Band)
	assert.Equal(t, 256, cfg.Render.BlockSize)
	assert.Equal(t, "hermite", cfg.Render.Interpolation)
	assert.InDelta(t, 0.0, cfg.Modulation.DepthSeconds, 0)
	assert.InDelta(t, 0.5, cfg.Modulation.MixGain, 0, "unset keys keep defaults")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 64, cfg.Server.CacheSize)
	assert.Len(t, cfg.EncoderOptions(), 1)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BINAURAL_BAND", "beta")
	t.Setenv("BINAURAL_LOG_LEVEL", "warn")
	t.Setenv("BINAURAL_ADDR", ":7000")
	t.Setenv("BINAURAL_CACHE_SIZE", "5")

	cfg, err := LoadConfig(writeConfig(t, "band: delta\n"))
	require.NoError(t, err)

	assert.Equal(t, "beta", cfg.Band)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.CacheSize)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "band: [unclosed"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "band: gamma\n"))

	var bandErr *binaural.InvalidBandError
	require.ErrorAs(t, err, &bandErr)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	cfg.Output = ""
	cfg.Render.BlockSize = 0
	cfg.Render.Interpolation = "sinc"
	cfg.Modulation.MixGain = 3
	cfg.Server.CacheSize = 0
	cfg.Server.MaxUploadBytes = 10

	err := cfg.Validate()
	require.Error(t, err)

	for _, want := range []string{"log_level", "output", "block_size", "render.interpolation", "mix gain", "cache_size", "max_upload_bytes"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestInterpolationReachesRenderer(t *testing.T) {
	cfg := Default()
	cfg.Render.Interpolation = "hermite"
	require.NoError(t, cfg.Validate())

	g, err := cfg.Renderer(nil).Graph("alpha")
	require.NoError(t, err)

	d, ok := g.Node(binaural.NodeDelay)
	require.True(t, ok)
	assert.InDelta(t, 1.0, d.Params[graph.SettingInterpolation], 0)

	cfg.Render.Interpolation = "cubic"
	assert.Len(t, cfg.StageOptions(), 3)
}

func TestModule(t *testing.T) {
	path := writeConfig(t, "band: beta\n")

	var cfg *Config

	app := fxtest.New(t,
		fx.Supply(Path(path)),
		Module,
		fx.Populate(&cfg),
	)

	app.RequireStart()
	app.RequireStop()

	require.NotNil(t, cfg)
	assert.Equal(t, "beta", cfg.Band)
}
