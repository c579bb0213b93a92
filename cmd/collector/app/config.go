package app

import (
	"flag"
	"os"

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
		c                             Config
		storePath, iface, tool, delay string
		noiseFloor                    int
		verbose                       bool
	)
	fs.StringVar(&c.ConfigPath, "c", "", "Path to the configuration file (optional)")
	fs.StringVar(&storePath, "store", "", "Path to the record store, overwritten on start")
	fs.StringVar(&iface, "i", "", "Default wireless interface")
	fs.StringVar(&tool, "tool", "", "Link status utility, run as `<tool> <interface>`")
	fs.StringVar(&delay, "delay", "", "Pause after every measurement, e.g. 3s or PT3S")
	fs.IntVar(&noiseFloor, "noise-floor", 0, "Noise level in dBm assumed when the tool reports none")
	fs.BoolVar(&verbose, "verbose", false, "Enable more verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	loaded, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Config = loaded

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			c.Store.Path = storePath
		case "i":
			c.Collector.Interface = iface
		case "tool":
			c.Collector.Tool = tool
		case "noise-floor":
			c.Collector.NoiseFloor = noiseFloor
		case "delay":
			d, err := config.ParseTimeDuration(delay)
			if err != nil {
				visitErr = err
				return
			}
			c.Collector.Delay = d
		}
	})
	if visitErr != nil {
		fs.Usage()
		return nil, visitErr
	}
	if verbose {
		c.Settings.LogLevel = "debug"
	}

	if err = c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return &c, nil
}
