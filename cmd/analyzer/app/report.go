package app

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// Summary holds the key statistics of a survey
type Summary struct {
	Records    int                      // all records in the store
	Readings   int                      // records carrying RSSI
	MeanRSSI   float64                  // dBm
	StdDevRSSI float64                  // dB, sample standard deviation, NaN below two readings
	Worst      *survey.Measurement      // lowest RSSI, nil without readings
	Variance   []survey.CoordinateStats // per-position RSSI spread
	Fit        *PathLossFit             // nil when the trend could not be fitted
}

func summarize(ms []survey.Measurement, worst *survey.Measurement, variance []survey.CoordinateStats, fit *PathLossFit) Summary {
	values := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.RSSI != nil {
			values = append(values, float64(*m.RSSI))
		}
	}

	s := Summary{
		Records:    len(ms),
		Readings:   len(values),
		MeanRSSI:   math.NaN(),
		StdDevRSSI: math.NaN(),
		Worst:      worst,
		Variance:   variance,
		Fit:        fit,
	}

	switch len(values) {
	case 0:
	case 1:
		s.MeanRSSI = values[0]
	default:
		s.MeanRSSI, s.StdDevRSSI = stat.MeanStdDev(values, nil)
	}
	return s
}

func formatDB(v float64, unit string) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%0.2f %s", v, unit)
}

// printSummary writes the human readable survey report
func printSummary(w io.Writer, s Summary) error {
	p := &errWriter{w: w}

	p.printf("\n--- Survey statistics ---\n")
	p.printf("* Records: %s (%s with signal strength)\n", humanize.Comma(int64(s.Records)), humanize.Comma(int64(s.Readings)))
	p.printf("* Mean RSSI: %s\n", formatDB(s.MeanRSSI, "dBm"))
	p.printf("* RSSI standard deviation: %s (signal fluctuation, a multipath indicator)\n", formatDB(s.StdDevRSSI, "dB"))

	if s.Worst != nil {
		p.printf("\n--- Worst signal (shadow zone) ---\n")
		p.printf("Coordinates: (%0.1f, %0.1f)\n", s.Worst.X, s.Worst.Y)
		p.printf("RSSI: %d dBm | Distance: %0.1f m\n", *s.Worst.RSSI, s.Worst.Distance())
	}

	if s.Fit != nil {
		p.printf("\n--- Path loss ---\n")
		p.printf("RSSI = %0.2f %+0.2f * log10(d) dBm over %d readings (R² %0.3f)\n", s.Fit.Intercept, s.Fit.Slope, s.Fit.N, s.Fit.RSquared)
		p.printf("Path loss exponent n: %0.2f\n", s.Fit.Exponent)
	}

	if len(s.Variance) > 0 {
		p.printf("\n--- RSSI variance per coordinate ---\n")
		tw := tabwriter.NewWriter(p, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "x\ty\treadings\tmean (dBm)\tstd dev (dB)\t\n")
		for _, c := range s.Variance {
			fmt.Fprintf(tw, "%0.2f\t%0.2f\t%d\t%0.2f\t%0.3f\t\n", c.X, c.Y, c.Count, c.Mean, c.StdDev)
		}
		if err := tw.Flush(); err != nil && p.err == nil {
			p.err = err
		}
	}

	return p.err
}

// errWriter keeps the first write error so a report can be printed without
// checking every line
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e, format, args...)
}
