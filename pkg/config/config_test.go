package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 512, cfg.Parser.MaxNameLength)
	assert.Equal(t, 4, cfg.Convert.Workers)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"zero name length", func(c *Config) { c.Parser.MaxNameLength = 0 }, true},
		{"output level", func(c *Config) { c.Parser.OutputLevel = "molecular" }, false},
		{"bad output level", func(c *Config) { c.Parser.OutputLevel = "atomic" }, true},
		{"no workers", func(c *Config) { c.Convert.Workers = 0 }, true},
		{"cutoff too high", func(c *Config) { c.Convert.Cutoff = 101 }, true},
		{"bad min level", func(c *Config) { c.Filter.MinLevel = "x" }, true},
		{"inverted m/z window", func(c *Config) { c.Filter.MinMZ, c.Filter.MaxMZ = 800, 700 }, true},
		{"missing addr", func(c *Config) { c.Serve.Addr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: debug
parser:
  strict: true
  output_level: species
filter:
  categories: [GP, SP]
  min_mz: 400
serve:
  read_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Parser.IsStrict())
	assert.Equal(t, "species", cfg.Parser.OutputLevel)
	assert.Equal(t, []string{"GP", "SP"}, cfg.Filter.Categories)
	assert.Equal(t, 400.0, cfg.Filter.MinMZ)
	assert.Equal(t, 5*time.Second, cfg.Serve.ReadTimeout)
	// untouched fields keep their defaults
	assert.Equal(t, 512, cfg.Parser.MaxNameLength)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.AdductsFile = "adducts.csv"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	cfg.Merge(&Config{
		Log:     LogConfig{Format: "json"},
		Convert: ConvertConfig{Workers: 8},
		Filter:  FilterConfig{Classes: []string{"PC"}},
	})

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Convert.Workers)
	assert.Equal(t, 1000, cfg.Convert.ChunkSize)
	assert.Equal(t, []string{"PC"}, cfg.Filter.Classes)
}

func TestMergeStrict(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name   string
		layers []*bool
		want   bool
	}{
		{"unset", []*bool{nil}, false},
		{"enabled", []*bool{&on}, true},
		{"unset keeps enabled", []*bool{&on, nil}, true},
		{"later layer disables", []*bool{&on, &off}, false},
		{"later layer enables", []*bool{&off, &on}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			for _, strict := range tt.layers {
				cfg.Merge(&Config{Parser: ParserConfig{Strict: strict}})
			}
			assert.Equal(t, tt.want, cfg.Parser.IsStrict())
		})
	}

	// merged values do not alias the layer
	cfg := DefaultConfig()
	layer := &Config{Parser: ParserConfig{Strict: &on}}
	cfg.Merge(layer)
	*layer.Parser.Strict = false
	assert.True(t, cfg.Parser.IsStrict())
}

func TestLoaderPrecedence(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "sub", "dir")
	require.NoError(t, os.MkdirAll(work, 0755))

	user := DefaultConfig()
	user.Convert.Workers = 2
	user.Log.Format = "json"
	require.NoError(t, user.SaveToFile(filepath.Join(home, UserConfigDir, UserConfigFile)))

	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("convert:\n  workers: 6\n"), 0644))

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("serve:\n  addr: \":9090\"\n"), 0644))

	l := NewLoader(nil)
	l.home = func() (string, error) { return home, nil }
	l.cwd = func() (string, error) { return work, nil }

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Convert.Workers)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Serve.Addr)

	cfg, err = l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Serve.Addr)

	_, err = l.Load(filepath.Join(home, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoaderLayersKeepUnsetFields(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0755))
	require.NoError(t, os.WriteFile(userPath, []byte("log:\n  format: json\n  level: debug\nparser:\n  strict: true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("log:\n  level: warn\n"), 0644))

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("parser:\n  strict: false\n"), 0644))

	l := NewLoader(nil)
	l.home = func() (string, error) { return home, nil }
	l.cwd = func() (string, error) { return project, nil }

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format, "project layer must not reset the user format")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Parser.IsStrict())
	assert.Equal(t, 4, cfg.Convert.Workers)

	cfg, err = l.Load(explicit)
	require.NoError(t, err)
	assert.False(t, cfg.Parser.IsStrict())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := NewLoader(nil)
	l.home = func() (string, error) { return home, nil }

	require.NoError(t, l.EnsureUserConfig())
	_, err := os.Stat(filepath.Join(home, UserConfigDir, UserConfigFile))
	assert.NoError(t, err)
	require.NoError(t, l.EnsureUserConfig())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("name", "PC 34:1"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"name":"PC 34:1"`)

	_, err = NewLogger(LogConfig{Level: "verbose"}, &buf)
	assert.Error(t, err)
}
