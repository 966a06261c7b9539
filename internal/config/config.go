package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the mediapress server.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Retention RetentionConfig
	FFmpeg    FFmpegConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type StorageConfig struct {
	UploadDir      string
	DownloadDir    string
	MaxUploadBytes int64
}

type RetentionConfig struct {
	MaxAge        time.Duration
	SweepInterval time.Duration
}

type FFmpegConfig struct {
	// FFmpegPath and FFprobePath override PATH resolution. Empty means
	// resolve "ffmpeg" / "ffprobe" from PATH.
	FFmpegPath  string
	FFprobePath string
}

// Load reads configuration from environment variables and returns a validated
// Config. Every value has a default; Load only fails on invalid combinations.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("MEDIAPRESS_PORT", 8080),
			Env:  envString("MEDIAPRESS_ENV", "development"),
		},
		Storage: StorageConfig{
			UploadDir:      envString("MEDIAPRESS_UPLOAD_DIR", "static/uploads"),
			DownloadDir:    envString("MEDIAPRESS_DOWNLOAD_DIR", "static/downloads"),
			MaxUploadBytes: envInt64("MEDIAPRESS_MAX_UPLOAD_BYTES", 512<<20),
		},
		Retention: RetentionConfig{
			MaxAge:        envDuration("MEDIAPRESS_RETENTION_AGE", 30*time.Minute),
			SweepInterval: envDuration("MEDIAPRESS_SWEEP_INTERVAL", 5*time.Minute),
		},
		FFmpeg: FFmpegConfig{
			FFmpegPath:  os.Getenv("MEDIAPRESS_FFMPEG"),
			FFprobePath: os.Getenv("MEDIAPRESS_FFPROBE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("MEDIAPRESS_PORT must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("MEDIAPRESS_MAX_UPLOAD_BYTES must be positive, got %d", c.Storage.MaxUploadBytes)
	}
	if c.Storage.UploadDir == c.Storage.DownloadDir {
		return fmt.Errorf("upload and download directories must differ, both are %q", c.Storage.UploadDir)
	}
	if c.Retention.MaxAge <= 0 {
		return fmt.Errorf("MEDIAPRESS_RETENTION_AGE must be positive, got %s", c.Retention.MaxAge)
	}
	if c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("MEDIAPRESS_SWEEP_INTERVAL must be positive, got %s", c.Retention.SweepInterval)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
