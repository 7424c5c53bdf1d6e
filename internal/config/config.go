package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/peterbourgon/ff/v3"
)

// EnvPrefix is prepended to every flag name when read from the environment,
// so -fs-conn becomes ENCORE_FS_CONN.
const EnvPrefix = "ENCORE"

const (
	BackendHuggingFace = "huggingface"
	BackendOllama      = "ollama"
	BackendOpenAI      = "openai"
	BackendNone        = "none"
)

// Config holds everything the API process needs at startup.
type Config struct {
	Addr  string
	DB    string
	Debug bool

	FSType string
	FSConn string

	ModelBackend     string
	Model            string
	HFToken          string
	OllamaHost       string
	OpenAIKey        string
	OpenAIBaseURL    string
	LoadTimeout      time.Duration
	InferenceTimeout time.Duration

	Workers      int
	QueueSize    int
	JobTimeout   time.Duration
	AutoClassify bool

	MaxUploadMB int64
}

// MaxUploadMBLimit caps max-upload-mb so MaxUploadBytes cannot overflow.
const MaxUploadMBLimit = 4096

// MaxUploadBytes returns the upload cap in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load parses flags, then ENCORE_* environment variables, then the optional
// plain config file named by -config. Flags win over env, env over file.
func Load(args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("encore", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	_ = fs.String("config", "", "config file (optional)")

	var cfg Config
	fs.StringVar(&cfg.Addr, "addr", ":8080", "http listen address")
	fs.StringVar(&cfg.DB, "db", "encore.db", "sqlite database path")
	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")

	fs.StringVar(&cfg.FSType, "fs-type", "local", "asset store type (local, s3)")
	fs.StringVar(&cfg.FSConn, "fs-conn", "assets", "directory for local, key:secret@bucket.region[@endpoint] for s3")

	fs.StringVar(&cfg.ModelBackend, "model-backend", BackendHuggingFace, "mood model backend (huggingface, ollama, openai, none)")
	fs.StringVar(&cfg.Model, "model", "", "model name (backend default when empty)")
	fs.StringVar(&cfg.HFToken, "hf-token", "", "hugging face api token")
	fs.StringVar(&cfg.OllamaHost, "ollama-host", "", "ollama base url")
	fs.StringVar(&cfg.OpenAIKey, "openai-key", "", "openai api key")
	fs.StringVar(&cfg.OpenAIBaseURL, "openai-base-url", "", "openai compatible base url")
	fs.DurationVar(&cfg.LoadTimeout, "load-timeout", 2*time.Minute, "model load timeout")
	fs.DurationVar(&cfg.InferenceTimeout, "inference-timeout", 30*time.Second, "per prediction timeout")

	fs.IntVar(&cfg.Workers, "workers", 2, "number of analysis workers")
	fs.IntVar(&cfg.QueueSize, "queue-size", 100, "analysis queue capacity")
	fs.DurationVar(&cfg.JobTimeout, "job-timeout", 5*time.Minute, "timeout for a single analysis job")
	fs.BoolVar(&cfg.AutoClassify, "auto-classify", false, "classify mood after upload")

	fs.Int64Var(&cfg.MaxUploadMB, "max-upload-mb", 50, "maximum upload size in megabytes")

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.ModelBackend {
	case BackendHuggingFace, BackendOllama, BackendOpenAI, BackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown model backend %q", c.ModelBackend))
	}
	if c.ModelBackend == BackendOpenAI && c.OpenAIKey == "" {
		errs = append(errs, errors.New("openai backend requires openai-key"))
	}
	if c.AutoClassify && c.ModelBackend == BackendNone {
		errs = append(errs, errors.New("auto-classify requires a model backend"))
	}
	switch c.FSType {
	case "local", "s3":
	default:
		errs = append(errs, fmt.Errorf("unknown fs type %q", c.FSType))
	}
	if c.FSConn == "" {
		errs = append(errs, errors.New("fs-conn is required"))
	}
	if c.DB == "" {
		errs = append(errs, errors.New("db is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be at least 1"))
	}
	if c.QueueSize < 1 {
		errs = append(errs, errors.New("queue-size must be at least 1"))
	}
	if c.MaxUploadMB < 1 {
		errs = append(errs, errors.New("max-upload-mb must be at least 1"))
	}
	if c.MaxUploadMB > MaxUploadMBLimit {
		errs = append(errs, fmt.Errorf("max-upload-mb must be at most %d", MaxUploadMBLimit))
	}
	if c.LoadTimeout < 0 || c.InferenceTimeout < 0 || c.JobTimeout < 0 {
		errs = append(errs, errors.New("timeouts cannot be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
