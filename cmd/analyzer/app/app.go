package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/wifi-survey/internal/config"
	"github.com/roman-kulish/wifi-survey/internal/storage"
	"github.com/roman-kulish/wifi-survey/internal/survey"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	theme, err := ParseColorTheme(config.Analyzer.Theme)
	if err != nil {
		return err
	}

	a, err := NewAnalyzer(
		storage.NewCSVStore(config.Store.Path),
		config.Analyzer,
		theme,
		WithLogger(logger),
		WithOutput(os.Stdout),
	)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

// WithLogger sets the logger for the analyzer
func WithLogger(logger *slog.Logger) func(a *Analyzer) {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithOutput sets where the operator facing report goes
func WithOutput(w io.Writer) func(a *Analyzer) {
	return func(a *Analyzer) {
		a.out = w
	}
}

// Analyzer renders the survey charts and prints the statistics report
type Analyzer struct {
	store    storage.Store
	config   config.AnalyzerConfig
	renderer *HeatmapRenderer
	logger   *slog.Logger
	out      io.Writer
}

func NewAnalyzer(store storage.Store, c config.AnalyzerConfig, theme ColorTheme, options ...func(a *Analyzer)) (*Analyzer, error) {
	renderer, err := NewHeatmapRenderer(RenderConfig{ColorTheme: theme})
	if err != nil {
		return nil, fmt.Errorf("creating heatmap renderer: %w", err)
	}

	a := Analyzer{
		store:    store,
		config:   c,
		renderer: renderer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:      io.Discard,
	}

	for _, option := range options {
		option(&a)
	}

	return &a, nil
}

// heatmap describes one surface to render
type heatmap struct {
	name  string
	title string
	unit  string
	load  func(ctx context.Context, f *storage.Frame) ([]survey.Sample, error)
}

func fieldLoader(field storage.Field) func(ctx context.Context, f *storage.Frame) ([]survey.Sample, error) {
	return func(ctx context.Context, f *storage.Frame) ([]survey.Sample, error) {
		return f.Points(ctx, field)
	}
}

func varianceLoader(ctx context.Context, f *storage.Frame) ([]survey.Sample, error) {
	stats, err := f.CoordinateVariance(ctx)
	if err != nil {
		return nil, err
	}
	samples := make([]survey.Sample, len(stats))
	for i, s := range stats {
		samples[i] = survey.Sample{Position: s.Position, Value: s.StdDev, Count: s.Count}
	}
	return samples, nil
}

// Run loads the record store and produces every chart. Degenerate input
// skips the affected chart with a message; a missing store aborts.
func (a *Analyzer) Run(ctx context.Context) (err error) {
	ms, err := a.store.ReadAll(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrStoreNotFound) {
			a.printf("Error: %v. Run the collector first.\n", err)
		}
		return fmt.Errorf("loading records: %w", err)
	}

	a.logger.Info("records loaded", slog.String("count", humanize.Comma(int64(len(ms)))))

	if len(ms) < a.config.MinPoints {
		a.printf("Warning: only %d points were collected. Collect more data (at least 10-15) in distinct areas for a good heatmap.\n", len(ms))
	}

	if err = os.MkdirAll(a.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	frame, err := storage.NewFrame(ctx, ms)
	if err != nil {
		return fmt.Errorf("building analysis frame: %w", err)
	}
	defer func() {
		if cErr := frame.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	rows, err := frame.Len(ctx)
	if err != nil {
		return err
	}
	if rows != len(ms) {
		return fmt.Errorf("building analysis frame: %d of %d records loaded", rows, len(ms))
	}

	o := a.config.Outputs
	heatmaps := []heatmap{
		{o.RSSI, "Wi-Fi coverage map (RSSI)", "dBm", fieldLoader(storage.FieldRSSI)},
		{o.Noise, "Noise floor", "dBm", fieldLoader(storage.FieldNoise)},
		{o.SNR, "Signal to noise ratio", "dB", fieldLoader(storage.FieldSNR)},
		{o.Variance, "RSSI variance (standard deviation)", "dB", varianceLoader},
	}
	for _, h := range heatmaps {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = a.renderHeatmap(ctx, frame, h); err != nil {
			return err
		}
	}

	xys := signalByDistance(ms)
	var fit *PathLossFit
	if len(xys) == 0 {
		a.printf("Skipping RSSI vs distance chart: no valid RSSI readings.\n")
	} else {
		if fit, err = fitLogDistance(xys); err != nil {
			a.logger.Debug("path loss trend unavailable", slog.String("reason", err.Error()))
			fit, err = nil, nil
		}

		path := outputPath(a.config.OutputDir, o.Scatter, a.config.Format)
		if err = renderScatter(path, xys, fit); err != nil {
			return fmt.Errorf("rendering RSSI vs distance: %w", err)
		}
		a.logger.Info("chart written", slog.String("destination", path))
	}

	worst, err := frame.WorstSignal(ctx)
	if err != nil {
		return err
	}
	variance, err := frame.CoordinateVariance(ctx)
	if err != nil {
		return err
	}

	return printSummary(a.out, summarize(ms, worst, variance, fit))
}

func (a *Analyzer) renderHeatmap(ctx context.Context, frame *storage.Frame, h heatmap) error {
	samples, err := h.load(ctx, frame)
	if err != nil {
		return fmt.Errorf("loading %s samples: %w", h.name, err)
	}

	surface, err := buildSurface(samples, surfaceConfig{
		Title:      h.title,
		Unit:       h.unit,
		Margin:     a.config.Margin,
		GridWidth:  a.config.GridWidth,
		GridHeight: a.config.GridHeight,
	})
	if err != nil {
		a.printf("Skipping %s: %v.\n", h.title, err)
		return nil
	}

	img, err := a.renderer.Render(surface)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", h.name, err)
	}

	path := outputPath(a.config.OutputDir, h.name, a.config.Format)
	size, err := writeImage(path, img, a.config.Format)
	if err != nil {
		return err
	}

	a.logger.Info("heatmap written",
		slog.Group("image",
			slog.String("destination", path),
			slog.String("format", string(a.config.Format)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
			slog.String("size", humanize.Bytes(uint64(size))),
		),
		slog.Group("values",
			slog.Int("samples", len(samples)),
			slog.Float64("min", surface.Bounds.Min),
			slog.Float64("max", surface.Bounds.Max),
		))
	return nil
}

func (a *Analyzer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
