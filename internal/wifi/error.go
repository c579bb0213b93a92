package wifi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolNotFound is returned when the link status utility is not installed or not in PATH
	ErrToolNotFound = errors.New("link status tool not found")

	// ErrNoSignal is returned when the link status carries no signal level, the measurement is unusable
	ErrNoSignal = errors.New("no signal level in link status")
)

// CommandError is returned when the link status utility exits with an error,
// typically because the interface does not exist.
type CommandError struct {
	Tool      string
	Interface string
	Output    string
	Err       error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Tool, e.Interface, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
