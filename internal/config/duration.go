package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
	"gopkg.in/yaml.v3"
)

// TimeDuration is a time.Duration that unmarshals from either Go duration
// strings ("3s", "1m30s") or ISO-8601 durations ("PT3S").
type TimeDuration time.Duration

func NewTimeDuration(d time.Duration) TimeDuration {
	return TimeDuration(d)
}

func ParseTimeDuration(s string) (TimeDuration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return TimeDuration(d), nil
	}

	iso, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("config.TimeDuration: failed to parse %q: %w", s, err)
	}
	return TimeDuration(iso.ToTimeDuration()), nil
}

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseTimeDuration(value.Value)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *TimeDuration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	parsed, err := ParseTimeDuration(v)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d TimeDuration) Validate() error {
	if time.Duration(d) < 0 {
		return fmt.Errorf("config.TimeDuration: must not be negative: %s", time.Duration(d))
	}
	return nil
}

func (d TimeDuration) Duration() time.Duration {
	return time.Duration(d)
}

func (d TimeDuration) String() string {
	return time.Duration(d).String()
}
