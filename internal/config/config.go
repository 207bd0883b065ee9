package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Speech   SpeechConfig
	Diarize  DiarizeConfig
	Titles   TitlesConfig
	Media    MediaConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string // empty disables bearer auth
}

type SpeechConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string
	LocalBaseURL  string // default: "http://localhost:8178/v1"
}

type DiarizeConfig struct {
	BaseURL string // default: "http://localhost:8179"
}

type TitlesConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	DefaultProvider  string
	FallbackProvider string
	OpenAIModel      string
	AnthropicModel   string
	CacheTTLSeconds  int
}

type MediaConfig struct {
	TmpDir string // default: system temp
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cacheTTL, err := getEnvInt("TITLES_CACHE_TTL_SECONDS", 3600)
	if err != nil {
		return nil, fmt.Errorf("invalid TITLES_CACHE_TTL_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Speech: SpeechConfig{
			Backend:       getEnv("SPEECH_BACKEND", "openai"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("SPEECH_OPENAI_BASE_URL", ""),
			Model:         getEnv("SPEECH_MODEL", ""),
			LocalBaseURL:  getEnv("SPEECH_LOCAL_BASE_URL", "http://localhost:8178/v1"),
		},
		Diarize: DiarizeConfig{
			BaseURL: getEnv("DIARIZE_BASE_URL", "http://localhost:8179"),
		},
		Titles: TitlesConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			DefaultProvider:  getEnv("TITLES_DEFAULT_PROVIDER", "openai"),
			FallbackProvider: getEnv("TITLES_FALLBACK_PROVIDER", ""),
			OpenAIModel:      getEnv("TITLES_OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicModel:   getEnv("TITLES_ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			CacheTTLSeconds:  cacheTTL,
		},
		Media: MediaConfig{
			TmpDir: getEnv("MEDIA_TMP_DIR", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
