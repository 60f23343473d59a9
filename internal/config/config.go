package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Progress ProgressConfig `mapstructure:"progress" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains settings for validating externally issued student tokens.
// Identity management itself lives outside this service; the secret here must
// match the one the identity collaborator signs tokens with.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// LLMConfig contains settings for the card-candidate generation collaborator.
// Optional: when the API key is empty the generation endpoint is disabled.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}

// ProgressConfig tunes the progress aggregator.
type ProgressConfig struct {
	// MasteryWindow is the number of most recent reviews per card that count
	// toward the mastery percentage.
	MasteryWindow int `mapstructure:"mastery_window" validate:"required,gt=0"`
	// CacheTTLSeconds bounds how long a cached progress snapshot may be served
	// without recomputation.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}
