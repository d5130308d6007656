// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the catalog service.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Ingest   IngestConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// StorageConfig contains the on-disk layout for stored media.
type StorageConfig struct {
	UploadDir    string
	ThumbnailDir string
}

// IngestConfig contains thumbnail pipeline and upload configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type IngestConfig struct {
	FetchTimeout      time.Duration
	MinThumbnailBytes int
	JPEGQuality       int
	MaxUploadSize     int64
	AllowedExtensions []string
	FFmpegPath        string
	FFprobePath       string
}

// RabbitMQConfig contains the optional catalog event publisher configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "media_catalog")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Storage
	viper.SetDefault("storage.uploaddir", "uploads")
	viper.SetDefault("storage.thumbnaildir", "thumbnails")

	// Ingest
	viper.SetDefault("ingest.fetchtimeout", 10*time.Second)
	viper.SetDefault("ingest.minthumbnailbytes", 1000)
	viper.SetDefault("ingest.jpegquality", 85)
	viper.SetDefault("ingest.maxuploadsize", int64(500*1024*1024)) // 500 MiB
	viper.SetDefault("ingest.allowedextensions", []string{"mp4", "avi", "mov", "mkv", "webm", "flv"})
	viper.SetDefault("ingest.ffmpegpath", "ffmpeg")
	viper.SetDefault("ingest.ffprobepath", "ffprobe")

	// RabbitMQ (catalog events, off by default)
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "catalog.events")
	viper.SetDefault("rabbitmq.queue", "catalog.events.videos")
	viper.SetDefault("rabbitmq.routingkey", "video.changed")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
