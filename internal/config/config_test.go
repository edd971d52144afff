package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kolah/specwright/internal/logging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Output: OutputConfig{Dir: "."},
		LLM:    LLMConfig{Model: "gpt-4o", MaxToolRounds: 8},
		Log:    logging.Config{Level: "info", Format: "console"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "missing output dir",
			mutate:      func(c *Config) { c.Output.Dir = "" },
			wantErr:     true,
			errContains: "output directory is required",
		},
		{
			name:        "missing model",
			mutate:      func(c *Config) { c.LLM.Model = "" },
			wantErr:     true,
			errContains: "model name is required",
		},
		{
			name:        "negative timeout",
			mutate:      func(c *Config) { c.LLM.Timeout = -time.Second },
			wantErr:     true,
			errContains: "invalid timeout",
		},
		{
			name:        "zero tool rounds",
			mutate:      func(c *Config) { c.LLM.MaxToolRounds = 0 },
			wantErr:     true,
			errContains: "invalid max tool rounds",
		},
		{
			name:        "negative rate",
			mutate:      func(c *Config) { c.LLM.RequestsPerMinute = -1 },
			wantErr:     true,
			errContains: "invalid requests per minute",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Log.Level = "loud" },
			wantErr:     true,
			errContains: "invalid log level",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Log.Format = "xml" },
			wantErr:     true,
			errContains: "invalid log format",
		},
		{
			name:    "json log format",
			mutate:  func(c *Config) { c.Log.Format = "json" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					require.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRequireCredential(t *testing.T) {
	cfg := validConfig()
	require.ErrorIs(t, cfg.RequireCredential(), ErrMissingCredential)

	cfg.LLM.APIKey = "   "
	require.ErrorIs(t, cfg.RequireCredential(), ErrMissingCredential)

	cfg.LLM.APIKey = "sk-test"
	require.NoError(t, cfg.RequireCredential())
}

// newCommand returns a command with the shared flags bound and args parsed.
func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	BindFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, ".", cfg.Output.Dir)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, 8, cfg.LLM.MaxToolRounds)
	require.Zero(t, cfg.LLM.Timeout)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.True(t, cfg.Lint)
	require.Empty(t, cfg.LLM.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	configContent := `
brief: a todo list API with users and tasks
output:
  dir: ./out
  metrics-file: metrics.prom
llm:
  model: gpt-4o-mini
  timeout: 90s
  max-tool-rounds: 4
  requests-per-minute: 30
log:
  format: json
lint: false
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, DefaultFile), []byte(configContent), 0644))

	// specwright.yaml is picked up from the working directory
	chdir(t, tmpDir)

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, "a todo list API with users and tasks", cfg.Brief)
	require.Equal(t, "./out", cfg.Output.Dir)
	require.Equal(t, "metrics.prom", cfg.Output.MetricsFile)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 4, cfg.LLM.MaxToolRounds)
	require.Equal(t, 30, cfg.LLM.RequestsPerMinute)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Lint)
}

func TestLoadWithExplicitConfigPath(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("templates:\n  dir: ./prompts\n"), 0644))

	cfg, err := Load(newCommand(t, "--config", configPath))
	require.NoError(t, err)
	require.Equal(t, "./prompts", cfg.Templates.Dir)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(newCommand(t, "-c", filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading config file")
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("OPENAI_ORGANIZATION", "ignored")
	t.Setenv("SPECWRIGHT_LLM_MAX_TOOL_ROUNDS", "3")
	t.Setenv("SPECWRIGHT_OUTPUT_DIR", "/tmp/specs")
	t.Setenv("SPECWRIGHT_LINT", "false")

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, "sk-env", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4.1", cfg.LLM.Model)
	require.Equal(t, "http://localhost:8080/v1", cfg.LLM.BaseURL)
	require.Equal(t, 3, cfg.LLM.MaxToolRounds)
	require.Equal(t, "/tmp/specs", cfg.Output.Dir)
	require.False(t, cfg.Lint)
	require.NoError(t, cfg.RequireCredential())
}

func TestLoadIgnoresBlankEnvironment(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("SPECWRIGHT_OUTPUT_DIR", "")
	t.Setenv("SPECWRIGHT_LLM_MAX_TOOL_ROUNDS", "")

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, "sk-env", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Empty(t, cfg.LLM.BaseURL)
	require.Equal(t, ".", cfg.Output.Dir)
	require.Equal(t, 8, cfg.LLM.MaxToolRounds)
}

func TestLoadFlagsOverrideFileAndEnv(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, DefaultFile), []byte("llm:\n  model: from-file\n"), 0644))
	chdir(t, tmpDir)

	t.Setenv("OPENAI_MODEL", "from-env")

	cfg, err := Load(newCommand(t,
		"--model", "from-flag",
		"-o", "./generated",
		"--timeout", "2m",
		"--log-level", "debug",
		"--no-lint",
	))
	require.NoError(t, err)

	require.Equal(t, "from-flag", cfg.LLM.Model)
	require.Equal(t, "./generated", cfg.Output.Dir)
	require.Equal(t, 2*time.Minute, cfg.LLM.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Lint)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	_, err := Load(newCommand(t, "--log-format", "xml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log format")
}

func TestBuildFlagsMap(t *testing.T) {
	cmd := newCommand(t,
		"--brief", "tasks",
		"--templates", "./tmpl",
		"--metrics-file", "m.prom",
		"--log-format", "json",
	)

	m := buildFlagsMap(cmd)

	require.Equal(t, map[string]any{
		"brief":               "tasks",
		"templates.dir":       "./tmpl",
		"output.metrics-file": "m.prom",
		"log.format":          "json",
	}, m)
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "llm.max-tool-rounds", envKey("SPECWRIGHT_LLM_MAX_TOOL_ROUNDS"))
	require.Equal(t, "output.metrics-file", envKey("SPECWRIGHT_OUTPUT_METRICS_FILE"))
	require.Equal(t, "brief", envKey("SPECWRIGHT_BRIEF"))
}
