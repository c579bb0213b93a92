package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/wifi-survey/internal/config"
)

func TestNewConfigFromArgs_Defaults(t *testing.T) {
	c, err := NewConfigFromArgs("analyzer", nil)
	require.NoError(t, err)

	assert.Equal(t, "wifi_survey.csv", c.Store.Path)
	assert.Equal(t, config.ImagePNG, c.Analyzer.Format)
	assert.Equal(t, "viridis", c.Analyzer.Theme)
	assert.Equal(t, "info", c.Settings.LogLevel)
}

func TestNewConfigFromArgs_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  path: from-file.csv
analyzer:
  theme: thermal
  margin: 2
`), 0o644))

	t.Setenv(config.EnvKey("outputDir"), "from-env")

	c, err := NewConfigFromArgs("analyzer", []string{
		"-c", path,
		"-store", "from-flag.csv",
		"-f", "JPEG",
		"-grid", "120",
		"-verbose",
	})
	require.NoError(t, err)

	assert.Equal(t, path, c.ConfigPath)
	assert.Equal(t, "from-flag.csv", c.Store.Path)
	assert.Equal(t, "from-env", c.Analyzer.OutputDir)
	assert.Equal(t, "thermal", c.Analyzer.Theme)
	assert.Equal(t, 2.0, c.Analyzer.Margin)
	assert.Equal(t, config.ImageJPEG, c.Analyzer.Format)
	assert.Equal(t, 120, c.Analyzer.GridWidth)
	assert.Equal(t, 120, c.Analyzer.GridHeight)
	assert.Equal(t, "debug", c.Settings.LogLevel)
}

func TestNewConfigFromArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown theme", args: []string{"-theme", "rainbow"}},
		{name: "unknown format", args: []string{"-f", "gif"}},
		{name: "tiny grid", args: []string{"-grid", "3"}},
		{name: "negative margin", args: []string{"-margin", "-1"}},
		{name: "unknown flag", args: []string{"-db", "x"}},
		{name: "missing config file", args: []string{"-c", "does-not-exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfigFromArgs("analyzer", tt.args)
			assert.Error(t, err)
		})
	}
}
