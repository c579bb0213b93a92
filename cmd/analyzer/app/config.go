package app

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/roman-kulish/wifi-survey/internal/config"
)

// Config is the survey configuration after command line overrides
type Config struct {
	*config.Config
	ConfigPath string
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(os.Args[0], os.Args[1:])
}

// NewConfigFromArgs loads the configuration file named by -c, environment
// overrides and finally the flags given in args
func NewConfigFromArgs(name string, args []string) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var (
		c                                   Config
		storePath, outputDir, format, theme string
		margin                              float64
		gridSize                            int
		verbose                             bool
	)
	fs.StringVar(&c.ConfigPath, "c", "", "Path to the configuration file (optional)")
	fs.StringVar(&storePath, "store", "", "Path to the record store")
	fs.StringVar(&outputDir, "o", "", "Directory the charts are written to")
	fs.StringVar(&format, "f", "", "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", "", "Heatmap colour theme. [viridis, plasma, classic, grayscale, jungle, thermal]")
	fs.Float64Var(&margin, "margin", 0, "Metres added around the sampled area")
	fs.IntVar(&gridSize, "grid", 0, "Heatmap size in pixels, applied to both axes")
	fs.BoolVar(&verbose, "verbose", false, "Enable more verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	loaded, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Config = loaded

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			c.Store.Path = storePath
		case "o":
			c.Analyzer.OutputDir = outputDir
		case "f":
			c.Analyzer.Format = config.ImageFormat(strings.ToLower(format))
		case "theme":
			c.Analyzer.Theme = theme
		case "margin":
			c.Analyzer.Margin = margin
		case "grid":
			c.Analyzer.GridWidth = gridSize
			c.Analyzer.GridHeight = gridSize
		}
	})
	if verbose {
		c.Settings.LogLevel = "debug"
	}

	if err = c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if _, err := ParseColorTheme(c.Analyzer.Theme); err != nil {
		return fmt.Errorf("config.Analyzer: %w", err)
	}
	return nil
}
