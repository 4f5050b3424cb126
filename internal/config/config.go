// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Archive  ArchiveConfig
	Drive    DriveConfig
	Pipeline PipelineConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	ExportFolder    string
}

// PipelineConfig carries the policy values the reconciliation pipeline
// must not hardcode: status filter, delivery SKU, attribution directory.
type PipelineConfig struct {
	DeliveredStatus string
	DeliverySKU     string
	GestorFile      string
	MonthSpanCap    int
	UploadDir       string
}

type SyncConfig struct {
	BatchSize    int
	BatchDelayMS int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "frecuencia")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("ARCHIVE_ENABLED", false)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
		viper.SetDefault("ARCHIVE_SECRET_KEY", "")
		viper.SetDefault("ARCHIVE_BUCKET", "frecuencia-uploads")
		viper.SetDefault("ARCHIVE_USE_SSL", true)
		viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("GOOGLE_DRIVE_EXPORT_FOLDER", "")
		viper.SetDefault("PIPELINE_DELIVERED_STATUS", "Entregado")
		viper.SetDefault("PIPELINE_DELIVERY_SKU", "DELIVERY")
		viper.SetDefault("PIPELINE_GESTOR_FILE", "")
		viper.SetDefault("PIPELINE_MONTH_SPAN_CAP", 36)
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("SYNC_BATCH_SIZE", 100)
		viper.SetDefault("SYNC_BATCH_DELAY_MS", 500)

		// Read from environment variables
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
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Archive: ArchiveConfig{
				Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				ExportFolder:    viper.GetString("GOOGLE_DRIVE_EXPORT_FOLDER"),
			},
			Pipeline: PipelineConfig{
				DeliveredStatus: viper.GetString("PIPELINE_DELIVERED_STATUS"),
				DeliverySKU:     viper.GetString("PIPELINE_DELIVERY_SKU"),
				GestorFile:      viper.GetString("PIPELINE_GESTOR_FILE"),
				MonthSpanCap:    viper.GetInt("PIPELINE_MONTH_SPAN_CAP"),
				UploadDir:       viper.GetString("APP_UPLOAD_DIR"),
			},
			Sync: SyncConfig{
				BatchSize:    viper.GetInt("SYNC_BATCH_SIZE"),
				BatchDelayMS: viper.GetInt("SYNC_BATCH_DELAY_MS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
