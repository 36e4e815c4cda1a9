package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "url and timeout", args: []string{"-a", "http://api.example:9000/", "-t", "3"},
			expected: &Config{ServerURL: "http://api.example:9000", RequestTimeout: 3 * time.Second}},
		{name: "bad timeout", args: []string{"-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			cfg := &Config{}
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseJson(t *testing.T) {
	t.Run("overlays present members", func(t *testing.T) {
		withArgs(t, "-config", writeTempJSON(t, map[string]any{"request_timeout": "2s"}))

		cfg := &Config{ServerURL: "http://keep"}
		parseJson(cfg)

		assert.Equal(t, "http://keep", cfg.ServerURL)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("no flag leaves config alone", func(t *testing.T) {
		withArgs(t)

		cfg := &Config{ServerURL: "http://keep", RequestTimeout: time.Minute}
		parseJson(cfg)

		assert.Equal(t, &Config{ServerURL: "http://keep", RequestTimeout: time.Minute}, cfg)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		withArgs(t, "-c", bad)

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"server_url": "http://from-json", "request_timeout": "4s"})
	withArgs(t, "-c", path, "-a", "http://from-flag")

	cfg := LoadConfig()

	assert.Equal(t, "http://from-flag", cfg.ServerURL)
	assert.Equal(t, 4*time.Second, cfg.RequestTimeout)
}
