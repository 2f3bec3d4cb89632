// Package config loads interviewd's configuration: a YAML file with an
// environment-variable overlay, defaults, and aggregated validation.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for interviewd.
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Queue       QueueConfig     `yaml:"queue"`
	LLM         LLMConfig       `yaml:"llm"`
	Speech      SpeechConfig    `yaml:"speech"`
	Auth        AuthConfig      `yaml:"auth"`
	Transport   TransportConfig `yaml:"transport"`
	Debounce    DebounceConfig  `yaml:"debounce"`
	Logging     LoggingConfig   `yaml:"logging"`
	Environment string          `yaml:"environment"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects and connects the persistence layer. Driver is one
// of "postgres", "sqlite", or "memory".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// QueueConfig configures the SQS completion-notification sender. An empty
// QueueURL disables the sender entirely.
type QueueConfig struct {
	QueueURL        string `yaml:"queue_url"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// LLMConfig selects and authenticates the chat-completion provider. Provider
// is one of "openai" or "google".
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	GoogleAPIKey string `yaml:"google_api_key"`
	Model        string `yaml:"model"`
	MaxTokens    int    `yaml:"max_tokens"`
}

// SpeechConfig authenticates the Deepgram STT/TTS adapters.
type SpeechConfig struct {
	DeepgramAPIKey string `yaml:"deepgram_api_key"`
	STTModel       string `yaml:"stt_model"`
	TTSModel       string `yaml:"tts_model"`
}

// AuthConfig configures bearer-token verification. An empty JWTSecret
// disables auth entirely.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry"`
}

// TransportConfig holds the allowed CORS origins. The WebSocket transport
// does not consult it: its upgrader accepts any origin.
type TransportConfig struct {
	CORSOrigins []string `yaml:"cors_origins"`
}

// DebounceConfig configures the code/design submission debounce window.
type DebounceConfig struct {
	QuietSeconds int `yaml:"quiet_seconds"`
}

// LoggingConfig configures the slog handler. Format is "json" or "text".
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads, expands, decodes, overlays, defaults, and validates the
// configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("failed to parse config: expected single document")
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" {
		cfg.Database.DSN = value
	}
	if value := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); value != "" {
		cfg.LLM.OpenAIAPIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); value != "" {
		cfg.LLM.GoogleAPIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")); value != "" {
		cfg.Speech.DeepgramAPIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("SQS_QUEUE_URL")); value != "" {
		cfg.Queue.QueueURL = value
	}
	if value := strings.TrimSpace(os.Getenv("AWS_REGION")); value != "" {
		cfg.Queue.Region = value
	}
	if value := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); value != "" {
		cfg.Transport.CORSOrigins = splitAndTrim(value)
	}
	if value := strings.TrimSpace(os.Getenv("DEBOUNCE_QUIET_SECONDS")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.Debounce.QuietSeconds = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("ENVIRONMENT")); value != "" {
		cfg.Environment = value
	}
	if value := strings.TrimSpace(os.Getenv("JWT_SECRET")); value != "" {
		cfg.Auth.JWTSecret = value
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "memory"
	}

	if cfg.Queue.Region == "" {
		cfg.Queue.Region = "us-east-1"
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2048
	}

	if cfg.Speech.STTModel == "" {
		cfg.Speech.STTModel = "nova-2"
	}
	if cfg.Speech.TTSModel == "" {
		cfg.Speech.TTSModel = "aura-asteria-en"
	}

	if cfg.Auth.TokenExpiry == 0 {
		cfg.Auth.TokenExpiry = 24 * time.Hour
	}

	if cfg.Debounce.QuietSeconds == 0 {
		cfg.Debounce.QuietSeconds = 30
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
}

// ConfigValidationError aggregates every configuration issue found, rather
// than failing on the first.
type ConfigValidationError struct {
	Issues []string
}

func (e *ConfigValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var issues []string

	switch cfg.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		issues = append(issues, fmt.Sprintf("database.driver must be \"postgres\", \"sqlite\", or \"memory\", got %q", cfg.Database.Driver))
	}
	if cfg.Database.Driver != "memory" && strings.TrimSpace(cfg.Database.DSN) == "" {
		issues = append(issues, "database.dsn is required when database.driver is not \"memory\"")
	}

	switch cfg.LLM.Provider {
	case "openai", "google":
	default:
		issues = append(issues, fmt.Sprintf("llm.provider must be \"openai\" or \"google\", got %q", cfg.LLM.Provider))
	}
	if cfg.LLM.Provider == "openai" && strings.TrimSpace(cfg.LLM.OpenAIAPIKey) == "" {
		issues = append(issues, "llm.openai_api_key is required when llm.provider is \"openai\"")
	}
	if cfg.LLM.Provider == "google" && strings.TrimSpace(cfg.LLM.GoogleAPIKey) == "" {
		issues = append(issues, "llm.google_api_key is required when llm.provider is \"google\"")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}

	if cfg.Debounce.QuietSeconds <= 0 {
		issues = append(issues, "debounce.quiet_seconds must be greater than 0")
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		issues = append(issues, fmt.Sprintf("logging.format must be \"json\" or \"text\", got %q", cfg.Logging.Format))
	}

	if len(issues) > 0 {
		return &ConfigValidationError{Issues: issues}
	}
	return nil
}
