package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/roman-kulish/wifi-survey/internal/storage"
	"github.com/roman-kulish/wifi-survey/internal/wifi"
)

// Run wires the link status tool, the channel mapper and the record store
// into an interactive session reading operator input from in.
func Run(ctx context.Context, config *Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	source := wifi.NewCommandSource(config.Collector.Tool, wifi.WithSourceLogger(logger))
	extractor := wifi.NewExtractor(
		source,
		wifi.NewChannelMapperFromConfig(config.Channels),
		config.Collector.NoiseFloor,
		wifi.WithLogger(logger),
	)

	session := NewSession(
		storage.NewCSVStore(config.Store.Path),
		extractor,
		config.Collector,
		WithLogger(logger),
		WithInput(in),
		WithOutput(out),
	)

	logger.Debug("collector configured",
		slog.String("tool", config.Collector.Tool),
		slog.String("interface", config.Collector.Interface),
		slog.Int("noiseFloor", config.Collector.NoiseFloor),
		slog.String("delay", config.Collector.Delay.String()),
		slog.String("session", session.ID().String()))

	return session.Run(ctx)
}
