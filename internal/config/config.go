// Package config loads runtime settings from defaults, an optional config
// file and TASKPILOT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/db"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/vocab"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override: db.dsn is read from
// TASKPILOT_DB_DSN.
const EnvPrefix = "TASKPILOT"

type Config struct {
	DB      DBConfig
	HTTP    HTTPConfig
	LLM     llm.LLMConfig
	Session SessionConfig
	Events  EventsConfig
	Assign  AssignConfig
	Log     LogConfig
	// Vocabulary is the embedded table unless vocab.file points elsewhere.
	Vocabulary *vocab.Vocabulary
}

type DBConfig struct {
	Driver string
	DSN    string
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type SessionConfig struct {
	TTL          time.Duration
	HistoryLimit int
}

type EventsConfig struct {
	// NATSURL disables event publishing when empty.
	NATSURL       string
	SubjectPrefix string
}

type AssignConfig struct {
	DefaultTeams       []string
	SuggestWhenMissing bool
	// ConfirmWrites holds creates and updates for confirmation, not just
	// deletes.
	ConfirmWrites bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration. path may be empty, in which case
// TASKPILOT_CONFIG is consulted; a missing file is only an error when a
// path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg, err := build(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	parse := llmDefaults.Tasks[llm.TaskParse]

	v.SetDefault("db.driver", db.DriverSQLite)
	v.SetDefault("db.dsn", defaultDSN())
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("llm.enabled", llmDefaults.Enabled)
	v.SetDefault("llm.log_calls", llmDefaults.LogCalls)
	v.SetDefault("llm.provider", string(llmDefaults.Provider))
	v.SetDefault("llm.endpoint", llmDefaults.Endpoint)
	v.SetDefault("llm.model", llmDefaults.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", llmDefaults.Timeout)
	v.SetDefault("llm.max_retries", llmDefaults.MaxRetries)
	v.SetDefault("llm.parse.temperature", parse.Temperature)
	v.SetDefault("llm.parse.max_tokens", parse.MaxTokens)
	v.SetDefault("llm.parse.timeout", parse.Timeout)
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.history_limit", 20)
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "taskpilot")
	v.SetDefault("assign.default_teams", []string{})
	v.SetDefault("assign.suggest_when_missing", true)
	v.SetDefault("assign.confirm_writes", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("vocab.file", "")
}

// defaultDSN is ~/.taskpilot/taskpilot.db, or a relative path when the home
// directory is unknown.
func defaultDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".taskpilot", "taskpilot.db")
	}
	return filepath.Join(home, ".taskpilot", "taskpilot.db")
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("db.driver")),
			DSN:    v.GetString("db.dsn"),
		},
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			AllowedOrigins: stringList(v, "http.allowed_origins"),
			RequestTimeout: v.GetDuration("http.request_timeout"),
		},
		LLM: llm.LLMConfig{
			Enabled:    v.GetBool("llm.enabled"),
			LogCalls:   v.GetBool("llm.log_calls"),
			Provider:   llm.Provider(strings.ToLower(v.GetString("llm.provider"))),
			Endpoint:   v.GetString("llm.endpoint"),
			Model:      v.GetString("llm.model"),
			APIKey:     v.GetString("llm.api_key"),
			Timeout:    v.GetDuration("llm.timeout"),
			MaxRetries: v.GetInt("llm.max_retries"),
			Tasks: map[llm.TaskType]llm.TaskConfig{
				llm.TaskParse: {
					Temperature: v.GetFloat64("llm.parse.temperature"),
					MaxTokens:   v.GetInt("llm.parse.max_tokens"),
					Timeout:     v.GetDuration("llm.parse.timeout"),
				},
			},
		},
		Session: SessionConfig{
			TTL:          v.GetDuration("session.ttl"),
			HistoryLimit: v.GetInt("session.history_limit"),
		},
		Events: EventsConfig{
			NATSURL:       v.GetString("events.nats_url"),
			SubjectPrefix: v.GetString("events.subject_prefix"),
		},
		Assign: AssignConfig{
			DefaultTeams:       stringList(v, "assign.default_teams"),
			SuggestWhenMissing: v.GetBool("assign.suggest_when_missing"),
			ConfirmWrites:      v.GetBool("assign.confirm_writes"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	cfg.Vocabulary = vocab.Default()
	if file := v.GetString("vocab.file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading vocabulary: %w", err)
		}
		voc, err := vocab.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing vocabulary %s: %w", file, err)
		}
		cfg.Vocabulary = voc
	}
	if len(cfg.Assign.DefaultTeams) == 0 {
		cfg.Assign.DefaultTeams = append([]string(nil), cfg.Vocabulary.DefaultTeams...)
	}
	return cfg, nil
}

// stringList accepts both a list from a config file and a comma separated
// environment value.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("db.driver must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn is required"))
	}
	switch c.LLM.Provider {
	case llm.ProviderOllama, llm.ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be %q or %q, got %q", llm.ProviderOllama, llm.ProviderGemini, c.LLM.Provider))
	}
	if c.LLM.Enabled && c.LLM.Provider == llm.ProviderGemini && c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required for the gemini provider"))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.max_retries must be >= 0"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.HistoryLimit < 0 {
		errs = append(errs, errors.New("session.history_limit must be >= 0"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
