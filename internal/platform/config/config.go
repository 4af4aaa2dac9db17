package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// HTTPサーバ設定
	Server ServerConfig

	// Database設定
	Database DatabaseConfig

	// S3設定
	S3 S3Config

	// OpenAI設定（音声文字起こし用）
	OpenAI OpenAIConfig

	// ディスパッチャ設定
	Dispatcher DispatcherConfig

	// ログ設定
	Log LogConfig
}

// ServerConfig はHTTPサーバ設定
type ServerConfig struct {
	Port int
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// S3Config はオブジェクトストレージ設定
type S3Config struct {
	Region           string
	Bucket           string
	Endpoint         string // MinIO等の互換ストレージ向け（空ならAWS標準）
	UploadPrefix     string
	PresignTTL       time.Duration
	ValidateOnSubmit bool // submit 時にオブジェクトの存在確認を行うか
}

// OpenAIConfig はOpenAI API設定
type OpenAIConfig struct {
	APIKey             string
	TranscriptionModel string
	Timeout            time.Duration
}

// DispatcherConfig はワーカープール設定
type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

// LogConfig はログ出力設定
type LogConfig struct {
	Level  string // debug / info / warn / error
	Format string // json / text
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "sonorize"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "sonorize"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		S3: S3Config{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			Bucket:           getEnv("S3_BUCKET_NAME", "sonorizeaudios"),
			Endpoint:         getEnv("S3_ENDPOINT", ""),
			UploadPrefix:     getEnv("S3_UPLOAD_PREFIX", "uploads/"),
			PresignTTL:       getEnvAsDuration("S3_PRESIGN_TTL", time.Hour),
			ValidateOnSubmit: getEnvAsBool("S3_VALIDATE_ON_SUBMIT", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			TranscriptionModel: getEnv("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
			Timeout:            getEnvAsDuration("OPENAI_TIMEOUT", 5*time.Minute),
		},
		Dispatcher: DispatcherConfig{
			Workers:   getEnvAsInt("DISPATCHER_WORKERS", 4),
			QueueSize: getEnvAsInt("DISPATCHER_QUEUE_SIZE", 256),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数をtime.Durationとして取得します
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
