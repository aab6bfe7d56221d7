package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil, "empty.cue")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_AllFields(t *testing.T) {
	src := `
database:   "people.db"
eager:      true
log_level:  "debug"
log_format: "json"
`
	cfg, err := Parse([]byte(src), "arec.cue")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Database:  "people.db",
		Eager:     true,
		LogLevel:  "debug",
		LogFormat: "json",
	}, cfg)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`eager: true`), "arec.cue")
	require.NoError(t, err)
	assert.True(t, cfg.Eager)
	assert.Equal(t, "arec.db", cfg.Database)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"unknown field", `colour: "red"`, "colour"},
		{"bad level", `log_level: "verbose"`, "log_level"},
		{"wrong type", `eager: "yes"`, "eager"},
		{"empty database", `database: ""`, "database"},
		{"syntax", `database: `, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "arec.cue")
			require.Error(t, err)
			var ce *Error
			assert.True(t, errors.As(err, &ce))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arec.cue")
	require.NoError(t, os.WriteFile(path, []byte(`database: ":memory:"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LogLevel = "trace"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database = ""
	assert.Error(t, cfg.Validate())
}

func TestLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range testCases {
		got, err := Config{LogLevel: name}.Level()
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Config{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger, err = Default().NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
