package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Model    ModelConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogFormat string
	Debug     bool
}

type DatabaseConfig struct {
	// Driver is postgres, mysql or none.
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ModelConfig struct {
	Path            string
	FeatureInfoPath string
	CompaniesPath   string
	Neighbors       int
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey         string
	EmbeddingModel string
}

type StorageConfig struct {
	// Backend is local or minio.
	Backend     string
	UploadPath  string
	MaxFileSize int64
	MinIO       MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CacheConfig struct {
	// RedisAddr empty disables caching.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

var defaults = map[string]any{
	"PORT":                   "5000",
	"ENV":                    "development",
	"LOG_FORMAT":             "console",
	"DEBUG":                  false,
	"DB_DRIVER":              "none",
	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "postgres",
	"DB_PASSWORD":            "postgres",
	"DB_NAME":                "internship_predictor",
	"DB_SSLMODE":             "disable",
	"MODEL_PATH":             "./advanced_model.json",
	"FEATURE_INFO_PATH":      "./feature_info.json",
	"COMPANIES_PATH":         "./companies.csv",
	"KNN_NEIGHBORS":          15,
	"QDRANT_URL":             "http://localhost:6334",
	"QDRANT_API_KEY":         "",
	"QDRANT_COLLECTION":      "labelled_resumes",
	"GEMINI_API_KEY":         "",
	"GEMINI_EMBEDDING_MODEL": "text-embedding-004",
	"STORAGE_BACKEND":        "local",
	"UPLOAD_PATH":            "./uploads",
	"MAX_FILE_SIZE":          int64(10 << 20),
	"MINIO_ENDPOINT":         "localhost:9000",
	"MINIO_ACCESS_KEY":       "",
	"MINIO_SECRET_KEY":       "",
	"MINIO_BUCKET":           "resumes",
	"MINIO_USE_SSL":          false,
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"CACHE_TTL":              "24h",
	"WORKER_CONCURRENCY":     3,
	"WORKER_POLL_INTERVAL":   "10s",
}

// Load reads .env (or the given files) into the environment and builds the
// configuration from it. Missing env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	v, err := NewViper(envFiles...)
	if err != nil {
		return nil, err
	}
	return FromViper(v), nil
}

// NewViper returns a viper instance bound to the environment with defaults.
// Callers may bind flags onto it before calling FromViper.
func NewViper(envFiles ...string) (*viper.Viper, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v, nil
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:      v.GetString("PORT"),
			Env:       v.GetString("ENV"),
			LogFormat: v.GetString("LOG_FORMAT"),
			Debug:     v.GetBool("DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Model: ModelConfig{
			Path:            v.GetString("MODEL_PATH"),
			FeatureInfoPath: v.GetString("FEATURE_INFO_PATH"),
			CompaniesPath:   v.GetString("COMPANIES_PATH"),
			Neighbors:       v.GetInt("KNN_NEIGHBORS"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Gemini: GeminiConfig{
			APIKey:         v.GetString("GEMINI_API_KEY"),
			EmbeddingModel: v.GetString("GEMINI_EMBEDDING_MODEL"),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(v.GetString("STORAGE_BACKEND")),
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
			MinIO: MinIOConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
		},
		Cache: CacheConfig{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTL:           v.GetDuration("CACHE_TTL"),
		},
		Worker: WorkerConfig{
			Concurrency:  v.GetInt("WORKER_CONCURRENCY"),
			PollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
		},
	}
}

// PersistenceEnabled reports whether a database driver is configured.
func (c *Config) PersistenceEnabled() bool {
	return c.Database.Driver != "" && c.Database.Driver != "none"
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "mysql" {
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}
