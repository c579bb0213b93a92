package wifi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// LinkStatusSource returns the raw link status text for a wireless interface
type LinkStatusSource interface {
	LinkStatus(ctx context.Context, iface string) (string, error)
}

// WithSourceLogger sets the logger for the command source
func WithSourceLogger(logger *slog.Logger) func(s *CommandSource) {
	return func(s *CommandSource) {
		s.logger = logger.With(slog.String("tool", s.tool))
	}
}

// CommandSource queries link status by running `<tool> <interface>`,
// iwconfig by default.
type CommandSource struct {
	tool   string
	logger *slog.Logger
}

// NewCommandSource creates a source running tool with a discard logger
func NewCommandSource(tool string, options ...func(s *CommandSource)) *CommandSource {
	s := CommandSource{
		tool:   tool,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Cmd returns an exec.Cmd querying iface
func (s *CommandSource) Cmd(ctx context.Context, binPath, iface string) *exec.Cmd {
	return exec.CommandContext(ctx, binPath, iface)
}

// LinkStatus runs the tool and returns its combined output
func (s *CommandSource) LinkStatus(ctx context.Context, iface string) (string, error) {
	binPath, err := exec.LookPath(s.tool)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: `%s` not found in PATH", ErrToolNotFound, s.tool)
		}
		return "", fmt.Errorf("%w: failed to locate `%s`: %w", ErrToolNotFound, s.tool, err)
	}

	s.logger.Debug("querying link status", slog.String("binary", binPath), slog.String("interface", iface))

	out, err := s.Cmd(ctx, binPath, iface).CombinedOutput()
	if err != nil {
		return "", &CommandError{
			Tool:      s.tool,
			Interface: iface,
			Output:    string(out),
			Err:       err,
		}
	}

	return string(out), nil
}
