package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"

	defaultStorePath  = "wifi_survey.csv"
	defaultTool       = "iwconfig"
	defaultInterface  = "wlan0"
	defaultNoiseFloor = -95
	defaultDelay      = 3 * time.Second
	defaultStopWord   = "quit"
	defaultTolerance  = 0.005
	defaultMargin     = 1.0
	defaultGridSize   = 400
	defaultTheme      = "viridis"
	defaultMinPoints  = 5
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// Config represents the survey configuration shared by the collector and the analyzer
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Store     StoreConfig     `yaml:"store"`
	Collector CollectorConfig `yaml:"collector"`
	Channels  ChannelConfig   `yaml:"channels"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// StoreConfig locates the flat record store
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CollectorConfig represents measurement collection settings
type CollectorConfig struct {
	Interface  string       `yaml:"interface"`
	Tool       string       `yaml:"tool"`       // link status utility, queried as `<tool> <interface>`
	NoiseFloor int          `yaml:"noiseFloor"` // dBm, substituted when the tool reports no noise level
	Delay      TimeDuration `yaml:"delay"`      // pause after every measurement
	StopWord   string       `yaml:"stopWord"`
}

// SubBand maps an exclusive (Min, Max) GHz range to a representative channel
type SubBand struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Channel int     `yaml:"channel"`
}

// ChannelConfig holds the frequency to channel matching constants
type ChannelConfig struct {
	Tolerance float64   `yaml:"tolerance"` // GHz
	Bands5GHz []SubBand `yaml:"bands5GHz"`
}

// OutputFiles names every artifact written by the analyzer, without extension
type OutputFiles struct {
	RSSI     string `yaml:"rssi"`
	Noise    string `yaml:"noise"`
	SNR      string `yaml:"snr"`
	Variance string `yaml:"variance"`
	Scatter  string `yaml:"scatter"`
}

// AnalyzerConfig represents rendering and analysis settings
type AnalyzerConfig struct {
	OutputDir  string      `yaml:"outputDir"`
	Margin     float64     `yaml:"margin"` // metres added around the sampled extent
	GridWidth  int         `yaml:"gridWidth"`
	GridHeight int         `yaml:"gridHeight"`
	Theme      string      `yaml:"theme"`
	Format     ImageFormat `yaml:"format"`
	MinPoints  int         `yaml:"minPoints"`
	Outputs    OutputFiles `yaml:"outputs"`
}

// DefaultBands5GHz returns the coarse 5 GHz sub-bands observed in driver output
func DefaultBands5GHz() []SubBand {
	return []SubBand{
		{Min: 5.175, Max: 5.250, Channel: 36},
		{Min: 5.250, Max: 5.350, Channel: 52},
		{Min: 5.470, Max: 5.725, Channel: 100},
		{Min: 5.725, Max: 5.850, Channel: 149},
	}
}

// Default returns the configuration used when no file or override is given
func Default() *Config {
	return &Config{
		Settings: Settings{LogLevel: "info"},
		Store:    StoreConfig{Path: defaultStorePath},
		Collector: CollectorConfig{
			Interface:  defaultInterface,
			Tool:       defaultTool,
			NoiseFloor: defaultNoiseFloor,
			Delay:      NewTimeDuration(defaultDelay),
			StopWord:   defaultStopWord,
		},
		Channels: ChannelConfig{
			Tolerance: defaultTolerance,
			Bands5GHz: DefaultBands5GHz(),
		},
		Analyzer: AnalyzerConfig{
			OutputDir:  ".",
			Margin:     defaultMargin,
			GridWidth:  defaultGridSize,
			GridHeight: defaultGridSize,
			Theme:      defaultTheme,
			Format:     ImagePNG,
			MinPoints:  defaultMinPoints,
			Outputs: OutputFiles{
				RSSI:     "heatmap_rssi",
				Noise:    "heatmap_noise",
				SNR:      "heatmap_snr",
				Variance: "heatmap_variance",
				Scatter:  "rssi_vs_distance",
			},
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err = yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := ApplyEnv(c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("config: store path is required")
	}
	if err := c.Collector.Validate(); err != nil {
		return err
	}
	if err := c.Channels.Validate(); err != nil {
		return err
	}
	return c.Analyzer.Validate()
}

func (c *CollectorConfig) Validate() error {
	if strings.TrimSpace(c.Tool) == "" {
		return errors.New("config.Collector: tool is required")
	}
	if c.NoiseFloor >= 0 {
		return fmt.Errorf("config.Collector: noise floor must be negative dBm: %d given", c.NoiseFloor)
	}
	if strings.TrimSpace(c.StopWord) == "" {
		return errors.New("config.Collector: stop word is required")
	}
	if err := c.Delay.Validate(); err != nil {
		return fmt.Errorf("config.Collector: invalid delay: %w", err)
	}
	return nil
}

func (c *ChannelConfig) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("config.Channels: tolerance must be positive: %0.4f given", c.Tolerance)
	}
	for i, b := range c.Bands5GHz {
		if b.Min >= b.Max {
			return fmt.Errorf("config.Channels: band %d: min must be less than max: %0.3f >= %0.3f", i, b.Min, b.Max)
		}
		if b.Channel <= 0 {
			return fmt.Errorf("config.Channels: band %d: channel must be positive: %d given", i, b.Channel)
		}
	}
	return nil
}

func (c *AnalyzerConfig) Validate() error {
	if c.Margin < 0 {
		return fmt.Errorf("config.Analyzer: margin must not be negative: %0.2f given", c.Margin)
	}
	if c.GridWidth < 10 || c.GridHeight < 10 {
		return fmt.Errorf("config.Analyzer: grid must be at least 10x10: %dx%d given", c.GridWidth, c.GridHeight)
	}
	if _, ok := validImageFormats[c.Format]; !ok {
		return fmt.Errorf("config.Analyzer: invalid image format: %s", c.Format)
	}
	o := c.Outputs
	if o.RSSI == "" || o.Noise == "" || o.SNR == "" || o.Variance == "" || o.Scatter == "" {
		return errors.New("config.Analyzer: every output file name is required")
	}
	return nil
}
