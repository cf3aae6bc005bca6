package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Plot.Channel)
	assert.Equal(t, "stimulus_V", cfg.Plot.StimulusColumn)
	assert.Equal(t, "viridis", cfg.Plot.ColorMap)
	assert.Equal(t, "gold", cfg.Plot.Color)
	assert.Equal(t, 1.5, cfg.Plot.LineWidth)
	assert.Equal(t, float64(10), cfg.Plot.Width)
	assert.Equal(t, float64(4), cfg.Plot.Height)
	assert.Equal(t, 300, cfg.Plot.DPI)
	assert.True(t, cfg.Plot.HideAxes)
	assert.True(t, cfg.Plot.Transparent)
	assert.True(t, cfg.Plot.FixedY)
	assert.True(t, cfg.AxesFile.Enabled)
	assert.False(t, cfg.ScaleBar.OnTrace)
	assert.Equal(t, "lower-left", cfg.ScaleBar.Corner)
	assert.Equal(t, "black", cfg.ScaleBar.Color)
	assert.Equal(t, "Amplitude (mV)", cfg.Plot.YLabel)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
plot:
  channel: 3
  overlay: true
  stimulus_column: "stim_mA"
  colormap: "inferno_r"
  show_colorbar: true
  color: "#ff0000"
  line_width: 2
  width: 6
  height: 3
  dpi: 150
  hide_axes: false
  transparent: false
  fixed_y: false

axes_file:
  enabled: false
  width: 2

scale_bar:
  on_trace: true
  corner: "upper-right"

preview:
  max_points: 0

log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Plot.Channel)
	assert.True(t, cfg.Plot.Overlay)
	assert.Equal(t, "stim_mA", cfg.Plot.StimulusColumn)
	assert.Equal(t, "inferno_r", cfg.Plot.ColorMap)
	assert.True(t, cfg.Plot.ShowColorbar)
	assert.Equal(t, "#ff0000", cfg.Plot.Color)
	assert.Equal(t, float64(2), cfg.Plot.LineWidth)
	assert.Equal(t, 150, cfg.Plot.DPI)
	assert.False(t, cfg.Plot.HideAxes)
	assert.False(t, cfg.Plot.Transparent)
	assert.False(t, cfg.Plot.FixedY)
	assert.False(t, cfg.AxesFile.Enabled)
	assert.Equal(t, float64(2), cfg.AxesFile.Width)
	assert.Equal(t, float64(3), cfg.AxesFile.Height) // default
	assert.True(t, cfg.ScaleBar.OnTrace)
	assert.Equal(t, "upper-right", cfg.ScaleBar.Corner)
	assert.Equal(t, 0, cfg.Preview.MaxPoints)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: yaml: content: ["), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
plot:
  channel: 2
  line_width: -1
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Plot.Channel)
	assert.Equal(t, 1.5, cfg.Plot.LineWidth)      // default
	assert.Equal(t, "viridis", cfg.Plot.ColorMap) // default
	assert.Equal(t, "Time (ms)", cfg.Plot.XLabel) // default
	assert.Equal(t, 100, cfg.Preview.DPI)         // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Plot.Channel = 4
	cfg.Plot.ColorMap = "magma"
	cfg.ScaleBar.OnTrace = true

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Plot.Channel)
	assert.Equal(t, "magma", loaded.Plot.ColorMap)
	assert.True(t, loaded.ScaleBar.OnTrace)
}

func TestSave_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emgplot", "config.yaml")
	require.NoError(t, Default().Save(path))

	assert.FileExists(t, path)
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Plot, loaded.Plot)
}

func TestLoad_Unreadable(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestApplyLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	require.NoError(t, LogConfig{Level: "debug"}.ApplyLogging())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	require.NoError(t, LogConfig{}.ApplyLogging())
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	assert.Error(t, LogConfig{Level: "loud"}.ApplyLogging())
}
