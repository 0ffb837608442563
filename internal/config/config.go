// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // CARDWALL_DATABASE_URL (required)
	HTTPAddr    string // CARDWALL_HTTP_ADDR (default ":8080")
	NATSURL     string // CARDWALL_NATS_URL (optional, empty = no events)
	AuthToken   string // CARDWALL_AUTH_TOKEN (optional, empty = auth disabled)

	// Sync settings
	SyncInterval   time.Duration // CARDWALL_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // CARDWALL_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // CARDWALL_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // CARDWALL_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // CARDWALL_SYNC_S3_KEY (default "cardwall/backup.jsonl"; "{date}" expands to the snapshot date)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("CARDWALL_DATABASE_URL"),
		HTTPAddr:       getenv("CARDWALL_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("CARDWALL_NATS_URL"),
		AuthToken:      os.Getenv("CARDWALL_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("CARDWALL_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("CARDWALL_SYNC_S3_ENDPOINT"),
		SyncS3Region:   getenv("CARDWALL_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      getenv("CARDWALL_SYNC_S3_KEY", "cardwall/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("CARDWALL_DATABASE_URL is required")
	}

	intervalStr := getenv("CARDWALL_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("CARDWALL_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
