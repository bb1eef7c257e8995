package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Ingestion IngestionConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DBConfig selects the relational backend. Driver is "sqlite3" or
// "postgres"; Path applies to sqlite, the host fields to postgres.
type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LLMConfig struct {
	// Provider is "openai", "ollama" or "" to disable image extraction.
	Provider string
	OpenAI   OpenAIConfig
	Ollama   OllamaConfig
	Judge    JudgeConfig
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	ServerURL string
	Model     string
}

// JudgeConfig controls the optional semantic judge for en2zh grading.
type JudgeConfig struct {
	Enabled               bool
	Strictness            string
	TreatPartialAsCorrect bool
}

type IngestionConfig struct {
	MaxBatchImages int
	TaskTTL        time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real env vars still win through AutomaticEnv.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("db.driver", "sqlite3")
	viper.SetDefault("db.path", "sidebyside.db")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("jwt.access_token_ttl", 8*60)
	viper.SetDefault("llm.judge.strictness", "medium")
	viper.SetDefault("llm.openai.model", "gpt-4o-mini")
	viper.SetDefault("llm.ollama.model", "llava")
	viper.SetDefault("ingestion.max_batch_images", 20)
	viper.SetDefault("ingestion.task_ttl", 30)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Driver:   viper.GetString("db.driver"),
			Path:     viper.GetString("db.path"),
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		JWT: JWTConfig{
			SecretKey:      viper.GetString("jwt.secret_key"),
			AccessTokenTTL: viper.GetDuration("jwt.access_token_ttl") * time.Minute,
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		LLM: LLMConfig{
			Provider: viper.GetString("llm.provider"),
			OpenAI: OpenAIConfig{
				APIKey: viper.GetString("llm.openai.api_key"),
				Model:  viper.GetString("llm.openai.model"),
			},
			Ollama: OllamaConfig{
				ServerURL: viper.GetString("llm.ollama.server_url"),
				Model:     viper.GetString("llm.ollama.model"),
			},
			Judge: JudgeConfig{
				Enabled:               viper.GetBool("llm.judge.enabled"),
				Strictness:            viper.GetString("llm.judge.strictness"),
				TreatPartialAsCorrect: viper.GetBool("llm.judge.treat_partial_as_correct"),
			},
		},
		Ingestion: IngestionConfig{
			MaxBatchImages: viper.GetInt("ingestion.max_batch_images"),
			TaskTTL:        viper.GetDuration("ingestion.task_ttl") * time.Minute,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Environment overrides for deploy-time settings
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		config.DB.Driver = driver
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		config.DB.Path = path
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if openAIKey := os.Getenv("OPENAI_API_KEY"); openAIKey != "" {
		config.LLM.OpenAI.APIKey = openAIKey
	}
	if ollamaURL := os.Getenv("OLLAMA_SERVER_URL"); ollamaURL != "" {
		config.LLM.Ollama.ServerURL = ollamaURL
	}

	if config.JWT.SecretKey == "" {
		return nil, fmt.Errorf("jwt.secret_key is required (set JWT_SECRET_KEY)")
	}

	return config, nil
}

// GetDSN builds the sqlx connection string for the configured driver.
func (c *Config) GetDSN() string {
	if c.DB.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
	}
	return c.DB.Path
}

// GetMigrateURL builds the database URL for golang-migrate.
func (c *Config) GetMigrateURL() string {
	if c.DB.Driver == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(c.DB.User), url.QueryEscape(c.DB.Password),
			c.DB.Host, c.DB.Port, c.DB.DBName, c.DB.SSLMode)
	}
	return "sqlite3://" + c.DB.Path
}
