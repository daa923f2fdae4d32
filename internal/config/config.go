package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port            string        `mapstructure:"API_PORT"`
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MongoURI        string        `mapstructure:"MONGO_URI"`
	MongoDatabase   string        `mapstructure:"MONGO_DATABASE"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	PatientTokenTTL time.Duration `mapstructure:"PATIENT_TOKEN_TTL"`
	LabTokenTTL     time.Duration `mapstructure:"LAB_TOKEN_TTL"`
	BcryptCost      int           `mapstructure:"BCRYPT_COST"`
	HashConcurrency int           `mapstructure:"HASH_CONCURRENCY"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	TextbeltAPIKey  string        `mapstructure:"TEXTBELT_API_KEY"`
	LabLoginPath    string        `mapstructure:"LAB_LOGIN_PATH"`
}

var envKeys = []string{
	"API_PORT", "ENV", "LOG_LEVEL", "MONGO_URI", "MONGO_DATABASE", "JWT_SECRET",
	"PATIENT_TOKEN_TTL", "LAB_TOKEN_TTL", "BCRYPT_COST", "HASH_CONCURRENCY",
	"CORS_ORIGINS", "TEXTBELT_API_KEY", "LAB_LOGIN_PATH",
}

// Load reads configuration from the environment, after loading .env when
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_DATABASE", "medlab")
	v.SetDefault("PATIENT_TOKEN_TTL", "24h")
	v.SetDefault("LAB_TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("HASH_CONCURRENCY", runtime.GOMAXPROCS(0))
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LAB_LOGIN_PATH", "/lab/login")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// viper splits on "," but keeps surrounding spaces.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes in production, got %d", len(c.JWTSecret))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.HashConcurrency < 1 {
		return fmt.Errorf("HASH_CONCURRENCY must be positive, got %d", c.HashConcurrency)
	}
	if c.PatientTokenTTL <= 0 || c.LabTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
