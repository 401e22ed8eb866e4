package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	go_ora "github.com/sijms/go-ora/v2"
	"github.com/spf13/viper"
)

// Supported LLM providers
const (
	LLMProviderOllama = "ollama"
	LLMProviderOpenAI = "openai"
)

// Supported database drivers
const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Quiz      QuizConfig
	LLM       LLMConfig
	CacheTTLs CacheTTLConfig
}

type DBConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	Path            string // sqlite3 file path
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LoggerConfig struct {
	Env   string
	Level string
}

type AuthConfig struct {
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// QuizConfig holds quiz generation limits.
type QuizConfig struct {
	MinVocabulary    int
	DefaultCount     int
	MaxCount         int
	DemoDefaultCount int
}

// LLMConfig selects the model used to write example sentences.
type LLMConfig struct {
	Enabled   bool
	Provider  string // "ollama" or "openai"
	ServerURL string // ollama only
	APIKey    string // openai only
	Model     string
	Timeout   time.Duration
}

type CacheTTLConfig struct {
	Vocabulary time.Duration
}

// DSN builds the data source name for the configured driver.
func (c DBConfig) DSN() (string, error) {
	switch c.Driver {
	case DriverOracle, "":
		return go_ora.BuildUrl(c.Host, c.Port, c.DBName, c.User, c.Password, nil), nil
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   "/" + c.DBName,
		}
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u.RawQuery = "sslmode=" + sslMode
		return u.String(), nil
	case DriverSQLite:
		if c.Path == "" {
			return "", errors.New("db.path is required for sqlite3")
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Path), nil
	default:
		return "", fmt.Errorf("unsupported db driver: %s", c.Driver)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", "*")

	v.SetDefault("db.driver", DriverOracle)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 1521)
	v.SetDefault("db.user", "system")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "FREEPDB1")
	v.SetDefault("db.path", "vocab-quiz.db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("auth.jwt.secret_key", "")
	v.SetDefault("auth.jwt.access_token_ttl", 60*time.Minute)
	v.SetDefault("auth.jwt.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.jwt.issuer", "vocab-quiz")
	v.SetDefault("auth.google_oauth.client_id", "")
	v.SetDefault("auth.google_oauth.client_secret", "")
	v.SetDefault("auth.google_oauth.redirect_url", "http://localhost:8090/api/auth/google/callback")
	v.SetDefault("auth.google_oauth.scopes", []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	})

	v.SetDefault("quiz.min_vocabulary", 2)
	v.SetDefault("quiz.default_count", 10)
	v.SetDefault("quiz.max_count", 50)
	v.SetDefault("quiz.demo_default_count", 15)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.provider", LLMProviderOllama)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.server_url", "http://localhost:11434")
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.timeout", 15*time.Second)

	v.SetDefault("cache_ttls.vocabulary", 10*time.Minute)
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		DB: DBConfig{
			Driver:          v.GetString("db.driver"),
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			DBName:          v.GetString("db.name"),
			Path:            v.GetString("db.path"),
			SSLMode:         v.GetString("db.sslmode"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			AllowedOrigins: v.GetString("server.allowed_origins"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				SecretKey:       v.GetString("auth.jwt.secret_key"),
				AccessTokenTTL:  v.GetDuration("auth.jwt.access_token_ttl"),
				RefreshTokenTTL: v.GetDuration("auth.jwt.refresh_token_ttl"),
				Issuer:          v.GetString("auth.jwt.issuer"),
			},
			GoogleOAuth: GoogleOAuthConfig{
				ClientID:     v.GetString("auth.google_oauth.client_id"),
				ClientSecret: v.GetString("auth.google_oauth.client_secret"),
				RedirectURL:  v.GetString("auth.google_oauth.redirect_url"),
				Scopes:       v.GetStringSlice("auth.google_oauth.scopes"),
			},
		},
		Quiz: QuizConfig{
			MinVocabulary:    v.GetInt("quiz.min_vocabulary"),
			DefaultCount:     v.GetInt("quiz.default_count"),
			MaxCount:         v.GetInt("quiz.max_count"),
			DemoDefaultCount: v.GetInt("quiz.demo_default_count"),
		},
		LLM: LLMConfig{
			Enabled:   v.GetBool("llm.enabled"),
			Provider:  v.GetString("llm.provider"),
			ServerURL: v.GetString("llm.server_url"),
			APIKey:    v.GetString("llm.api_key"),
			Model:     v.GetString("llm.model"),
			Timeout:   v.GetDuration("llm.timeout"),
		},
		CacheTTLs: CacheTTLConfig{
			Vocabulary: v.GetDuration("cache_ttls.vocabulary"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted and normalizes quiz limits.
func (c *Config) Validate() error {
	if c.Auth.JWT.SecretKey == "" {
		return errors.New("auth.jwt.secret_key is required")
	}
	if c.Quiz.MinVocabulary < 2 {
		c.Quiz.MinVocabulary = 2
	}
	if c.Quiz.MaxCount <= 0 {
		return fmt.Errorf("quiz.max_count must be positive, got %d", c.Quiz.MaxCount)
	}
	if c.Quiz.DefaultCount < 0 || c.Quiz.DefaultCount > c.Quiz.MaxCount {
		return fmt.Errorf("quiz.default_count must be within [0, %d], got %d", c.Quiz.MaxCount, c.Quiz.DefaultCount)
	}
	if c.Quiz.DemoDefaultCount < 0 || c.Quiz.DemoDefaultCount > c.Quiz.MaxCount {
		return fmt.Errorf("quiz.demo_default_count must be within [0, %d], got %d", c.Quiz.MaxCount, c.Quiz.DemoDefaultCount)
	}
	if c.LLM.Enabled {
		switch c.LLM.Provider {
		case LLMProviderOllama, LLMProviderOpenAI:
		default:
			return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
		}
	}
	return nil
}
