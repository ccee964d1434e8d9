package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment variables holding provider credentials. They are read without
// the PORTFOLIO_ prefix so hosting dashboards can use the provider's usual
// names.
const (
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvPineconeKey = "PINECONE_API_KEY"
	EnvResendKey   = "RESEND_API_KEY"
)

// Vector backends.
const (
	BackendPinecone = "pinecone"
	BackendQdrant   = "qdrant"
	BackendChromem  = "chromem"
	BackendMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Vector   VectorConfig   `mapstructure:"vector"`
	Pinecone PineconeConfig `mapstructure:"pinecone"`
	Qdrant   QdrantConfig   `mapstructure:"qdrant"`
	Chromem  ChromemConfig  `mapstructure:"chromem"`
	Resend   ResendConfig   `mapstructure:"resend"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// StaticDir, when set, is served at / for the frontend build.
	StaticDir string `mapstructure:"static_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	// Embedder is "openai" or "simple"; simple is an offline stand-in for
	// local runs against the chromem or memory backends.
	Embedder string `mapstructure:"embedder"`
}

type VectorConfig struct {
	Backend string `mapstructure:"backend"`
}

type PineconeConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type QdrantConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

type ChromemConfig struct {
	Path string `mapstructure:"path"`
}

type ResendConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type ContactConfig struct {
	// PreflightOnSubmit sends a test email before every submission is
	// processed.
	PreflightOnSubmit bool `mapstructure:"preflight_on_submit"`
}

type ChatConfig struct {
	// RateLimit is requests per second across all visitors; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4")
	v.SetDefault("openai.embedding_model", "text-embedding-ada-002")
	v.SetDefault("openai.embedder", "openai")
	v.SetDefault("vector.backend", BackendPinecone)
	v.SetDefault("pinecone.api_key", "")
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.api_key", "")
	v.SetDefault("chromem.path", "./data/chromem")
	v.SetDefault("resend.api_key", "")
	v.SetDefault("contact.preflight_on_submit", false)
	v.SetDefault("chat.rate_limit", 0.0)
	v.SetDefault("chat.rate_burst", 5)
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Load reads configuration from an optional file and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"openai.api_key":   EnvOpenAIKey,
		"pinecone.api_key": EnvPineconeKey,
		"resend.api_key":   EnvResendKey,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// MissingChatCredentials lists the unset variables the chat endpoint needs.
func (c *Config) MissingChatCredentials() []string {
	var missing []string
	if c.OpenAI.APIKey == "" {
		missing = append(missing, EnvOpenAIKey)
	}
	if c.Vector.Backend == BackendPinecone && c.Pinecone.APIKey == "" {
		missing = append(missing, EnvPineconeKey)
	}
	return missing
}

// MissingContactCredentials lists the unset variables the contact endpoint
// needs.
func (c *Config) MissingContactCredentials() []string {
	if c.Resend.APIKey == "" {
		return []string{EnvResendKey}
	}
	return nil
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	switch c.Vector.Backend {
	case BackendPinecone, BackendQdrant, BackendChromem, BackendMemory:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown vector backend %q", c.Vector.Backend))
	}

	switch c.OpenAI.Embedder {
	case "openai":
	case "simple":
		if c.Vector.Backend == BackendPinecone || c.Vector.Backend == BackendQdrant {
			warnings = append(warnings, fmt.Sprintf("simple embedder cannot query a %s index built with %s", c.Vector.Backend, c.OpenAI.EmbeddingModel))
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown embedder %q", c.OpenAI.Embedder))
	}

	if c.Vector.Backend == BackendMemory {
		warnings = append(warnings, "memory backend starts empty on every run")
	}

	if c.Chat.RateLimit < 0 {
		warnings = append(warnings, fmt.Sprintf("chat rate_limit %.2f is negative; limiter disabled", c.Chat.RateLimit))
	}

	if len(c.MissingChatCredentials()) > 0 {
		warnings = append(warnings, "chat disabled, missing "+strings.Join(c.MissingChatCredentials(), ", "))
	}
	if len(c.MissingContactCredentials()) > 0 {
		warnings = append(warnings, "contact form disabled, missing "+strings.Join(c.MissingContactCredentials(), ", "))
	}
	return warnings
}
