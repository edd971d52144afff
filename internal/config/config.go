package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/kolah/specwright/internal/logging"
	"github.com/spf13/cobra"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "specwright.yaml"

var ErrMissingCredential = errors.New("OPENAI_API_KEY environment variable is not set")

type Config struct {
	Brief     string         `koanf:"brief"`
	Output    OutputConfig   `koanf:"output"`
	Templates TemplateConfig `koanf:"templates"`
	LLM       LLMConfig      `koanf:"llm"`
	Log       logging.Config `koanf:"log"`
	Lint      bool           `koanf:"lint"`
}

type OutputConfig struct {
	Dir         string `koanf:"dir"`
	MetricsFile string `koanf:"metrics-file"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

type LLMConfig struct {
	APIKey            string        `koanf:"api-key"`
	Model             string        `koanf:"model"`
	BaseURL           string        `koanf:"base-url"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxToolRounds     int           `koanf:"max-tool-rounds"`
	RequestsPerMinute int           `koanf:"requests-per-minute"`
}

func defaults() map[string]any {
	return map[string]any{
		"output.dir":          ".",
		"llm.model":           "gpt-4o",
		"llm.max-tool-rounds": 8,
		"log.level":           "info",
		"log.format":          "console",
		"lint":                true,
	}
}

// openAIEnv maps the provider's conventional variables onto config keys.
var openAIEnv = map[string]string{
	"OPENAI_API_KEY":  "llm.api-key",
	"OPENAI_MODEL":    "llm.model",
	"OPENAI_BASE_URL": "llm.base-url",
}

// BindFlags binds the flags shared by every command
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: specwright.yaml)")
	flags.String("brief", "", "API description (read from stdin when empty)")
	flags.StringP("output-dir", "o", "", "Directory the artifacts are written to")
	flags.String("model", "", "Model name passed to the provider")
	flags.String("templates", "", "Custom templates directory")
	flags.Duration("timeout", 0, "Per-invocation timeout (0 disables)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console, json")
	flags.String("metrics-file", "", "Write prometheus metrics to this file at the end of a run")
	flags.Bool("no-lint", false, "Skip linting the generated OpenAPI document")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("OPENAI_", ".", nonEmpty(func(s string) string {
		return openAIEnv[s]
	})), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// SPECWRIGHT_LLM_MAX_TOOL_ROUNDS -> llm.max-tool-rounds
	if err := k.Load(env.ProviderWithValue("SPECWRIGHT_", ".", nonEmpty(envKey)), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// nonEmpty skips variables that are set but blank so they do not shadow
// lower layers.
func nonEmpty(key func(string) string) func(string, string) (string, any) {
	return func(k, v string) (string, any) {
		if v == "" {
			return "", nil
		}
		return key(k), v
	}
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, "SPECWRIGHT_"))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return section
	}
	return section + "." + strings.ReplaceAll(field, "_", "-")
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	flags := cmd.Flags()

	stringFlags := map[string]string{
		"brief":        "brief",
		"output-dir":   "output.dir",
		"model":        "llm.model",
		"templates":    "templates.dir",
		"log-level":    "log.level",
		"log-format":   "log.format",
		"metrics-file": "output.metrics-file",
	}
	for flag, key := range stringFlags {
		if !flags.Changed(flag) {
			continue
		}
		if v, err := flags.GetString(flag); err == nil {
			m[key] = v
		}
	}

	if flags.Changed("timeout") {
		if v, err := flags.GetDuration("timeout"); err == nil {
			m["llm.timeout"] = v
		}
	}
	if flags.Changed("no-lint") {
		if v, err := flags.GetBool("no-lint"); err == nil {
			m["lint"] = !v
		}
	}

	return m
}

func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("model name is required")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s (must not be negative)", c.LLM.Timeout)
	}
	if c.LLM.MaxToolRounds < 1 {
		return fmt.Errorf("invalid max tool rounds: %d (must be at least 1)", c.LLM.MaxToolRounds)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid requests per minute: %d (must not be negative)", c.LLM.RequestsPerMinute)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Log.Level)
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (valid: console, json)", c.Log.Format)
	}

	return nil
}

// RequireCredential reports ErrMissingCredential when no API key is configured.
func (c *Config) RequireCredential() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingCredential
	}
	return nil
}
