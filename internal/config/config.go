package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Validation ValidationConfig `mapstructure:"validation" validate:"required"`
	Review     ReviewConfig     `mapstructure:"review" validate:"required"`
	Events     EventsConfig     `mapstructure:"events" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
}

// LLMConfig contains all LLM integration related settings.
// An empty GeminiAPIKey runs the service without model-backed validation.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	JudgeModel        string `mapstructure:"judge_model" validate:"required"`
	EmbeddingModel    string `mapstructure:"embedding_model" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// Enabled reports whether a Gemini API key is configured.
func (c LLMConfig) Enabled() bool {
	return c.GeminiAPIKey != ""
}

// ValidationConfig tunes the answer validation cascade.
type ValidationConfig struct {
	// EmbeddingThreshold is the similarity at or above which the embedding
	// stage accepts an answer without consulting the judge.
	EmbeddingThreshold float64       `mapstructure:"embedding_threshold" validate:"gt=0,lte=1"`
	EmbeddingTimeout   time.Duration `mapstructure:"embedding_timeout" validate:"gt=0"`
	JudgeTimeout       time.Duration `mapstructure:"judge_timeout" validate:"gt=0"`
}

// ReviewConfig contains settings for review submission.
type ReviewConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// EventsConfig contains settings for the in-process event channel.
type EventsConfig struct {
	HandlerTimeout time.Duration `mapstructure:"handler_timeout" validate:"gt=0"`
}

// TaskConfig contains settings for background embedding work.
type TaskConfig struct {
	WorkerCount      int           `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize        int           `mapstructure:"queue_size" validate:"gte=1"`
	EmbeddingTimeout time.Duration `mapstructure:"embedding_timeout" validate:"gt=0"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval" validate:"gte=0"`
	SweepBatchSize   int           `mapstructure:"sweep_batch_size" validate:"gte=1"`
}
