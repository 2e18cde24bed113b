// Package config provides gitscribe configuration management.
//
// Configuration is read once at startup and is immutable afterwards. Sources,
// later ones winning: built-in defaults, a YAML file, .env files, the process
// environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	appconfig "github.com/RobinCoderZhao/gitscribe/pkg/config"
	"github.com/RobinCoderZhao/gitscribe/pkg/llm"
	"github.com/RobinCoderZhao/gitscribe/pkg/scribeerr"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// FileName is the config file looked up in the working and home directories.
const FileName = ".gitscribe.yaml"

// Config is the main configuration for the gitscribe tools.
type Config struct {
	LLM         llm.Config    `yaml:"llm"`
	Credentials Credentials   `yaml:"-"`
	Diff        DiffConfig    `yaml:"diff"`
	Publish     PublishConfig `yaml:"publish"`
	Timeout     time.Duration `yaml:"timeout" env:"GITSCRIBE_TIMEOUT"`
	LogLevel    string        `yaml:"log_level" env:"GITSCRIBE_LOG_LEVEL"`
	Readme      string        `yaml:"readme"`
}

// Credentials holds provider API keys. They only come from the environment.
type Credentials struct {
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	OpenAI    string `env:"OPENAI_API_KEY"`
}

// DiffConfig controls diff collection.
type DiffConfig struct {
	Base     string   `yaml:"base" env:"GITSCRIBE_BASE"`
	MaxLines int      `yaml:"max_lines" env:"GITSCRIBE_MAX_LINES"`
	Exclude  []string `yaml:"exclude" env:"GITSCRIBE_EXCLUDE"`
}

// PublishConfig controls where the PR description is written.
type PublishConfig struct {
	Path string `yaml:"path" env:"GITSCRIBE_PUBLISH_PATH"`
}

// DefaultExclude lists paths whose diffs are noise for a model.
var DefaultExclude = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"dist/**",
	".yarn/**",
	"public/**/*.css",
	"public/**/*.js",
	"*.min.*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LLM: llm.DefaultConfig(),
		Diff: DiffConfig{
			Base:     "main",
			MaxLines: 400,
			Exclude:  append([]string(nil), DefaultExclude...),
		},
		Publish: PublishConfig{
			Path: "PR_DESCRIPTION.md",
		},
		Timeout:  2 * time.Minute,
		LogLevel: "warn",
		Readme:   "README.md",
	}
}

// Options tells Load where to look.
type Options struct {
	// Path is an explicit config file. When empty, FileName is searched in
	// the working directory and then the home directory.
	Path string
	// EnvFiles are loaded before the environment is read. Variables already
	// set in the process are not overridden.
	EnvFiles []string
}

// DefaultEnvFiles returns .env in the working directory and .env next to the
// running executable.
func DefaultEnvFiles() []string {
	files := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		files = append(files, filepath.Join(filepath.Dir(exe), ".env"))
	}
	return files
}

// Load builds the configuration and validates it. A missing credential for
// the selected provider is a configuration error.
func Load(opts Options) (Config, error) {
	cfg := DefaultConfig()

	for _, f := range opts.EnvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return cfg, scribeerr.Configuration(errors.Wrapf(err, "load %s", f), "")
		}
	}

	path := opts.Path
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		// An explicit path must exist; a searched one was already found.
		if err := appconfig.Load(path, &cfg); err != nil {
			return cfg, scribeerr.Configuration(err, "check "+path)
		}
	} else if err := appconfig.ApplyEnv(&cfg); err != nil {
		return cfg, scribeerr.Configuration(err, "")
	}

	if err := cfg.resolve(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// resolve normalizes the provider, picks its key and validates settings.
func (c *Config) resolve() error {
	p, err := llm.ParseProvider(string(c.LLM.Provider))
	if err != nil {
		return err
	}
	c.LLM.Provider = p

	if c.LLM.Model == "" {
		c.LLM.Model = llm.DefaultModel(p)
	}
	c.LLM.APIKey = c.Credentials.For(p)
	if c.LLM.APIKey == "" {
		env := llm.KeyEnv(p)
		return scribeerr.Configuration(
			errors.Newf("please set the %s environment variable", env),
			"export it in your shell or add it to a .env file")
	}

	if c.Diff.MaxLines <= 0 {
		c.Diff.MaxLines = 400
	}
	if strings.TrimSpace(c.Diff.Base) == "" {
		c.Diff.Base = "main"
	}
	for _, pattern := range c.Diff.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return scribeerr.Configuration(errors.Newf("invalid exclude pattern %q", pattern), "")
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	return nil
}

// For returns the API key for provider p.
func (c Credentials) For(p llm.Provider) string {
	switch p {
	case llm.OpenAI:
		return strings.TrimSpace(c.OpenAI)
	default:
		return strings.TrimSpace(c.Anthropic)
	}
}
