package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/roman-kulish/wifi-survey/internal/config"
	"github.com/roman-kulish/wifi-survey/internal/storage"
	"github.com/roman-kulish/wifi-survey/internal/survey"
	"github.com/roman-kulish/wifi-survey/internal/wifi"
)

var errInvalidPosition = errors.New("invalid position")

// confirmAnswers are the replies accepted as consent to reset the store
var confirmAnswers = map[string]struct{}{
	"y":   {},
	"yes": {},
	"s":   {},
	"sim": {},
}

// Measurer takes one link measurement on a wireless interface
type Measurer interface {
	Measure(ctx context.Context, iface string) (wifi.Metrics, error)
}

// WithLogger sets the logger for the session
func WithLogger(logger *slog.Logger) func(s *Session) {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithInput sets where operator replies are read from
func WithInput(r io.Reader) func(s *Session) {
	return func(s *Session) {
		s.in = r
	}
}

// WithOutput sets where prompts and messages are written to
func WithOutput(w io.Writer) func(s *Session) {
	return func(s *Session) {
		s.out = w
	}
}

// WithClock sets the time source used to stamp measurements
func WithClock(now func() time.Time) func(s *Session) {
	return func(s *Session) {
		s.now = now
	}
}

// Session is one interactive collection run. The operator walks the site,
// types the current position and the session measures the link there and
// appends the result to the record store.
type Session struct {
	id       uuid.UUID
	store    storage.Store
	measurer Measurer
	config   config.CollectorConfig

	in     io.Reader
	out    io.Writer
	logger *slog.Logger
	now    func() time.Time

	lines   <-chan string
	records int
}

// NewSession creates a session writing to store. Input defaults to an empty
// reader, so a session without WithInput ends right after the first prompt.
func NewSession(store storage.Store, measurer Measurer, c config.CollectorConfig, options ...func(s *Session)) *Session {
	s := Session{
		id:       uuid.New(),
		store:    store,
		measurer: measurer,
		config:   c,
		in:       strings.NewReader(""),
		out:      io.Discard,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}

	for _, option := range options {
		option(&s)
	}

	s.logger = s.logger.With(slog.String("session", s.id.String()))
	return &s
}

// ID returns the session identifier attached to every log record
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Records returns the number of measurements appended so far
func (s *Session) Records() int {
	return s.records
}

// Run drives the prompt loop until the stop word, the end of input or
// context cancellation. Only store failures are returned as errors.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.lines = readLines(ctx, s.in)

	s.printf("The record store %s will be overwritten. Continue? (y/n): ", s.storeName())
	answer, err := s.readLine(ctx)
	if err != nil || !confirmed(answer) {
		s.printf("\nCollection cancelled.\n")
		return nil
	}

	if err = s.store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting record store: %w", err)
	}
	s.logger.Info("session started", slog.String("store", s.storeName()))

	s.printf("Starting Wi-Fi data collection for the radio map.\n")
	s.printf("The noise floor is assumed to be %d dBm when the tool reports none.\n", s.config.NoiseFloor)
	s.printf("Type '%s' to finish.\n", s.config.StopWord)

	s.printf("Wireless interface [%s]: ", s.config.Interface)
	iface, err := s.readLine(ctx)
	if err != nil {
		return s.finish(err)
	}
	if iface = strings.TrimSpace(iface); iface == "" {
		iface = s.config.Interface
	}

	for {
		s.printf("\nPosition (x, y) in metres, e.g. 1.0, 3.5, or '%s': ", s.config.StopWord)
		line, err := s.readLine(ctx)
		if err != nil {
			return s.finish(err)
		}
		if strings.EqualFold(strings.TrimSpace(line), s.config.StopWord) {
			return s.finish(nil)
		}

		pos, err := ParsePosition(line)
		if err != nil {
			s.printf("Invalid format: %v. Use 'x, y', e.g. 1.0, 3.5.\n", err)
			continue
		}

		if err = s.measure(ctx, iface, pos); err != nil {
			return s.finish(err)
		}

		if err = sleep(ctx, s.config.Delay.Duration()); err != nil {
			return s.finish(err)
		}
	}
}

func (s *Session) measure(ctx context.Context, iface string, pos survey.Position) error {
	metrics, err := s.measurer.Measure(ctx, iface)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.reportFailure(iface, err)
		s.logger.Warn("measurement failed", slog.String("interface", iface), slog.String("error", err.Error()))
		return nil
	}

	if metrics.NoiseAssumed {
		s.printf("Warning: noise level not reported by the tool, using the assumed %d dBm.\n", s.config.NoiseFloor)
	}

	m := metrics.Measurement(s.now(), pos)
	if err = s.store.Append(ctx, m); err != nil {
		return fmt.Errorf("saving measurement: %w", err)
	}
	s.records++

	s.printf("Saved: position (%s, %s) | RSSI: %s dBm | SNR: %s dB | Noise: %s dBm | Channel: %s\n",
		humanize.Ftoa(pos.X), humanize.Ftoa(pos.Y),
		optional(m.RSSI), optional(m.SNR), optional(m.Noise), optional(m.Channel))

	s.logger.Info("measurement saved",
		slog.Float64("x", pos.X),
		slog.Float64("y", pos.Y),
		slog.Int("rssi", *m.RSSI),
		slog.Int("records", s.records))
	return nil
}

func (s *Session) reportFailure(iface string, err error) {
	var cmdErr *wifi.CommandError

	switch {
	case errors.Is(err, wifi.ErrToolNotFound):
		s.printf("Error: %v. Install the wireless tools package or set the collector tool.\n", err)
	case errors.As(err, &cmdErr):
		s.printf("Error running %s. Check the interface name (%s).\n", cmdErr.Tool, iface)
		if out := strings.TrimSpace(cmdErr.Output); out != "" {
			s.printf("Details: %s\n", out)
		}
	case errors.Is(err, wifi.ErrNoSignal):
		s.printf("No valid data could be obtained on %s. Try again or check the connection.\n", iface)
	default:
		s.printf("Measurement failed: %v.\n", err)
	}
	s.printf("Nothing was saved for this position.\n")
}

// finish ends the session. End of input and cancellation are normal ways out.
func (s *Session) finish(err error) error {
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		s.printf("\nCollection interrupted.")
	}

	s.printf("\nCollection finished: %s saved to %s.\n", pluralRecords(s.records), s.storeName())
	s.logger.Info("session finished", slog.Int("records", s.records))
	return nil
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (s *Session) storeName() string {
	if p, ok := s.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return "record store"
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// readLines feeds lines from r into the returned channel until r is
// exhausted or ctx is done. Reading happens on its own goroutine so a prompt
// can be abandoned on cancellation. A reader that is also an io.Closer is
// closed once ctx is done to release that goroutine; any other reader keeps
// it blocked in Scan until the next line or the end of the process.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)

	if c, ok := r.(io.Closer); ok {
		go func() {
			<-ctx.Done()
			_ = c.Close()
		}()
	}

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// ParsePosition parses "x, y" in metres
func ParsePosition(s string) (survey.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return survey.Position{}, fmt.Errorf("%w: expected two comma separated numbers, got %q", errInvalidPosition, strings.TrimSpace(s))
	}

	var coords [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return survey.Position{}, fmt.Errorf("%w: %q is not a number", errInvalidPosition, strings.TrimSpace(p))
		}
		coords[i] = v
	}

	return survey.Position{X: coords[0], Y: coords[1]}, nil
}

func confirmed(answer string) bool {
	_, ok := confirmAnswers[strings.ToLower(strings.TrimSpace(answer))]
	return ok
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func optional(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v)
}

func pluralRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return humanize.Comma(int64(n)) + " records"
}
