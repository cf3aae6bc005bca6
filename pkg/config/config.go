package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Plot     PlotConfig     `yaml:"plot"`
	AxesFile AxesFileConfig `yaml:"axes_file"`
	ScaleBar ScaleBarConfig `yaml:"scale_bar"`
	Preview  PreviewConfig  `yaml:"preview"`
	Log      LogConfig      `yaml:"log"`
}

// PlotConfig holds the defaults used to build a plot request.
type PlotConfig struct {
	Recording      int     `yaml:"recording"`
	Channel        int     `yaml:"channel"`
	Overlay        bool    `yaml:"overlay"`
	StimulusColumn string  `yaml:"stimulus_column"`
	ColorMap       string  `yaml:"colormap"`
	ShowColorbar   bool    `yaml:"show_colorbar"`
	Color          string  `yaml:"color"`
	LineWidth      float64 `yaml:"line_width"` // Points
	Width          float64 `yaml:"width"`      // Inches
	Height         float64 `yaml:"height"`     // Inches
	DPI            int     `yaml:"dpi"`
	HideAxes       bool    `yaml:"hide_axes"`
	Transparent    bool    `yaml:"transparent"`
	FixedY         bool    `yaml:"fixed_y"`
	XLabel         string  `yaml:"x_label"` // Unit in parentheses feeds scale bars
	YLabel         string  `yaml:"y_label"`
}

// AxesFileConfig describes the companion scale reference SVG.
type AxesFileConfig struct {
	Enabled bool    `yaml:"enabled"`
	Width   float64 `yaml:"width"`  // Inches
	Height  float64 `yaml:"height"` // Inches
}

// ScaleBarConfig describes the scale bar drawn on top of the traces.
type ScaleBarConfig struct {
	OnTrace bool   `yaml:"on_trace"`
	Corner  string `yaml:"corner"`
	Color   string `yaml:"color"`
}

// PreviewConfig contains on-screen preview parameters.
type PreviewConfig struct {
	DPI       int `yaml:"dpi"`
	MaxPoints int `yaml:"max_points"` // Per trace, 0 = no decimation
	Width     int `yaml:"width"`      // Window width (px)
	Height    int `yaml:"height"`     // Window height (px)
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Plot: PlotConfig{
			Recording:      0,
			Channel:        1,
			StimulusColumn: "stimulus_V",
			ColorMap:       "viridis",
			Color:          "gold",
			LineWidth:      1.5,
			Width:          10,
			Height:         4,
			DPI:            300,
			HideAxes:       true,
			Transparent:    true,
			FixedY:         true,
			XLabel:         "Time (ms)",
			YLabel:         "Amplitude (mV)",
		},
		AxesFile: AxesFileConfig{
			Enabled: true,
			Width:   3,
			Height:  3,
		},
		ScaleBar: ScaleBarConfig{
			OnTrace: false,
			Corner:  "lower-left",
			Color:   "black",
		},
		Preview: PreviewConfig{
			DPI:       100,
			MaxPoints: 5000,
			Width:     1000,
			Height:    450,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, err)
	}
	cfg.ensureDefaults()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the parent directory
// when it is missing. The GUI uses it to store form defaults.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", filename, err)
	}
	return nil
}

// ensureDefaults fills fields that cannot meaningfully be zero.
// Booleans are taken as written.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Plot.StimulusColumn == "" {
		c.Plot.StimulusColumn = def.Plot.StimulusColumn
	}
	if c.Plot.ColorMap == "" {
		c.Plot.ColorMap = def.Plot.ColorMap
	}
	if c.Plot.Color == "" {
		c.Plot.Color = def.Plot.Color
	}
	if c.Plot.LineWidth <= 0 {
		c.Plot.LineWidth = def.Plot.LineWidth
	}
	if c.Plot.Width <= 0 {
		c.Plot.Width = def.Plot.Width
	}
	if c.Plot.Height <= 0 {
		c.Plot.Height = def.Plot.Height
	}
	if c.Plot.DPI <= 0 {
		c.Plot.DPI = def.Plot.DPI
	}
	if c.Plot.XLabel == "" {
		c.Plot.XLabel = def.Plot.XLabel
	}
	if c.Plot.YLabel == "" {
		c.Plot.YLabel = def.Plot.YLabel
	}

	if c.AxesFile.Width <= 0 {
		c.AxesFile.Width = def.AxesFile.Width
	}
	if c.AxesFile.Height <= 0 {
		c.AxesFile.Height = def.AxesFile.Height
	}

	if c.ScaleBar.Corner == "" {
		c.ScaleBar.Corner = def.ScaleBar.Corner
	}
	if c.ScaleBar.Color == "" {
		c.ScaleBar.Color = def.ScaleBar.Color
	}

	if c.Preview.DPI <= 0 {
		c.Preview.DPI = def.Preview.DPI
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = def.Preview.Width
	}
	if c.Preview.Height <= 0 {
		c.Preview.Height = def.Preview.Height
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
