package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost/campus_test")
	t.Setenv("MAX_REQUEST_COUNT", "")
	t.Setenv("RECEIPT_STORAGE", "")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.example.edu, http://localhost:3000 ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxRequestCount)
	assert.Equal(t, ReceiptStorageLocal, cfg.ReceiptStorage)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, []string{"https://portal.example.edu", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsTest())
	assert.Same(t, cfg, GetConfig())
}

func TestLoad_InvalidMaxRequestCount(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost/campus_test")
	t.Setenv("MAX_REQUEST_COUNT", "five")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURL:     "postgresql://localhost/campus_test",
			MaxRequestCount: 5,
			ReceiptStorage:  ReceiptStorageLocal,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid local storage", func(c *Config) {}, ""},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL is required"},
		{"zero max count", func(c *Config) { c.MaxRequestCount = 0 }, "MAX_REQUEST_COUNT"},
		{"s3 without bucket", func(c *Config) { c.ReceiptStorage = ReceiptStorageS3 }, "AWS_S3_BUCKET"},
		{"s3 with bucket", func(c *Config) {
			c.ReceiptStorage = ReceiptStorageS3
			c.AWSS3Bucket = "receipts"
		}, ""},
		{"unknown storage", func(c *Config) { c.ReceiptStorage = "ftp" }, "RECEIPT_STORAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		t.Run(level, func(t *testing.T) {
			logger, err := NewLogger(&Config{LogLevel: level, GoEnv: "test"})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}

	logger, err := NewLogger(&Config{LogLevel: "info", LogFormat: "json", GoEnv: "production"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
