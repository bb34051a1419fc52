// internal/config/config.go

// Package config loads process configuration from the environment,
// with a .env file for development. Load is a singleton so every
// command sees the same snapshot.
package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Optimizer OptimizerConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type AppConfig struct {
	UploadDir string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

type StorageConfig struct {
	Enabled       bool
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	DatasetPrefix string
}

type DriveConfig struct {
	CredentialsJSON     string
	FolderID            string
	PollIntervalSeconds int
}

type OptimizerConfig struct {
	HoldingCostRate  float64
	StockoutCostRate float64
	ServiceLevel     float64
	Workers          int
	PolicyPath       string
}

type SchedulerConfig struct {
	Enabled      bool
	OptimizeCron string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		// Defaults keep a bare dev environment bootable.
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "jit")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
		viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 60)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "jit-datasets")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_DATASET_PREFIX", "datasets")
		viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
		viper.SetDefault("GOOGLE_DRIVE_POLL_INTERVAL_SECONDS", 300)
		viper.SetDefault("OPTIMIZER_HOLDING_COST_RATE", 0.25)
		viper.SetDefault("OPTIMIZER_STOCKOUT_COST_RATE", 0.5)
		viper.SetDefault("OPTIMIZER_SERVICE_LEVEL", 0.95)
		viper.SetDefault("OPTIMIZER_WORKERS", 0)
		viper.SetDefault("OPTIMIZER_POLICY_PATH", "./data/policy.json")
		viper.SetDefault("SCHEDULER_ENABLED", false)
		viper.SetDefault("SCHEDULER_OPTIMIZE_CRON", "0 2 * * *")

		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:         viper.GetString("DB_HOST"),
				Port:         viper.GetString("DB_PORT"),
				User:         viper.GetString("DB_USER"),
				Password:     viper.GetString("DB_PASSWORD"),
				DBName:       viper.GetString("DB_NAME"),
				SSLMode:      viper.GetString("DB_SSLMODE"),
				MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
				MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:       viper.GetBool("STORAGE_ENABLED"),
				Endpoint:      viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:     viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:     viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:        viper.GetString("STORAGE_BUCKET"),
				Region:        viper.GetString("STORAGE_REGION"),
				UseSSL:        viper.GetBool("STORAGE_USE_SSL"),
				DatasetPrefix: viper.GetString("STORAGE_DATASET_PREFIX"),
			},
			Drive: DriveConfig{
				CredentialsJSON:     viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				FolderID:            viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
				PollIntervalSeconds: viper.GetInt("GOOGLE_DRIVE_POLL_INTERVAL_SECONDS"),
			},
			Optimizer: OptimizerConfig{
				HoldingCostRate:  viper.GetFloat64("OPTIMIZER_HOLDING_COST_RATE"),
				StockoutCostRate: viper.GetFloat64("OPTIMIZER_STOCKOUT_COST_RATE"),
				ServiceLevel:     viper.GetFloat64("OPTIMIZER_SERVICE_LEVEL"),
				Workers:          viper.GetInt("OPTIMIZER_WORKERS"),
				PolicyPath:       viper.GetString("OPTIMIZER_POLICY_PATH"),
			},
			Scheduler: SchedulerConfig{
				Enabled:      viper.GetBool("SCHEDULER_ENABLED"),
				OptimizeCron: viper.GetString("SCHEDULER_OPTIMIZE_CRON"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
	}
}
