package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PRICEWATCH_APP_NAME":                os.Getenv("PRICEWATCH_APP_NAME"),
		"PRICEWATCH_APP_ENV":                 os.Getenv("PRICEWATCH_APP_ENV"),
		"PRICEWATCH_APP_PORT":                os.Getenv("PRICEWATCH_APP_PORT"),
		"PRICEWATCH_DATABASE_HOST":           os.Getenv("PRICEWATCH_DATABASE_HOST"),
		"PRICEWATCH_DATABASE_PORT":           os.Getenv("PRICEWATCH_DATABASE_PORT"),
		"PRICEWATCH_DATABASE_USER":           os.Getenv("PRICEWATCH_DATABASE_USER"),
		"PRICEWATCH_DATABASE_PASSWORD":       os.Getenv("PRICEWATCH_DATABASE_PASSWORD"),
		"PRICEWATCH_DATABASE_DBNAME":         os.Getenv("PRICEWATCH_DATABASE_DBNAME"),
		"PRICEWATCH_DATABASE_SSLMODE":        os.Getenv("PRICEWATCH_DATABASE_SSLMODE"),
		"PRICEWATCH_DATABASE_MAX_OPEN_CONNS": os.Getenv("PRICEWATCH_DATABASE_MAX_OPEN_CONNS"),
		"PRICEWATCH_DATABASE_MAX_IDLE_CONNS": os.Getenv("PRICEWATCH_DATABASE_MAX_IDLE_CONNS"),
		"PRICEWATCH_EMBEDDING_API_KEY":       os.Getenv("PRICEWATCH_EMBEDDING_API_KEY"),
		"PRICEWATCH_CATALOG_API_BASE_URL":    os.Getenv("PRICEWATCH_CATALOG_API_BASE_URL"),
		"PRICEWATCH_MATCHER_WEIGHT_VENDOR":   os.Getenv("PRICEWATCH_MATCHER_WEIGHT_VENDOR"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pricewatch-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "pricewatch", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 3, cfg.Scraper.MaxRetries)
		assert.Equal(t, 100, cfg.Matcher.CandidatePoolSize)
		assert.Equal(t, 10, cfg.Alerts.EstimatedVolume)
		assert.Equal(t, 10, cfg.Embedding.BatchSize)
	})

	t.Run("loads values from environment variables with PRICEWATCH prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PRICEWATCH_APP_NAME", "test-app")
		os.Setenv("PRICEWATCH_APP_ENV", "testing")
		os.Setenv("PRICEWATCH_APP_PORT", "9000")
		os.Setenv("PRICEWATCH_DATABASE_HOST", "testdb.local")
		os.Setenv("PRICEWATCH_DATABASE_PORT", "5433")
		os.Setenv("PRICEWATCH_DATABASE_USER", "testuser")
		os.Setenv("PRICEWATCH_DATABASE_PASSWORD", "testpass")
		os.Setenv("PRICEWATCH_DATABASE_DBNAME", "testdb")
		os.Setenv("PRICEWATCH_DATABASE_SSLMODE", "require")
		os.Setenv("PRICEWATCH_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("PRICEWATCH_DATABASE_MAX_IDLE_CONNS", "10")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("PRICEWATCH_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("PRICEWATCH_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("PRICEWATCH_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("PRICEWATCH_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects matcher weights that do not sum to one", func(t *testing.T) {
		clearEnv()
		os.Setenv("PRICEWATCH_MATCHER_WEIGHT_VENDOR", "0.9")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weights must sum to 1.0")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"PRICEWATCH_APP_ENV":              os.Getenv("PRICEWATCH_APP_ENV"),
		"PRICEWATCH_DATABASE_PASSWORD":    os.Getenv("PRICEWATCH_DATABASE_PASSWORD"),
		"PRICEWATCH_DATABASE_SSLMODE":     os.Getenv("PRICEWATCH_DATABASE_SSLMODE"),
		"PRICEWATCH_EMBEDDING_API_KEY":    os.Getenv("PRICEWATCH_EMBEDDING_API_KEY"),
		"PRICEWATCH_CATALOG_API_BASE_URL": os.Getenv("PRICEWATCH_CATALOG_API_BASE_URL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setValidProductionBase := func() {
		os.Setenv("PRICEWATCH_APP_ENV", "production")
		os.Setenv("PRICEWATCH_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PRICEWATCH_DATABASE_SSLMODE", "require")
		os.Setenv("PRICEWATCH_EMBEDDING_API_KEY", "sk-test-key")
		os.Setenv("PRICEWATCH_CATALOG_API_BASE_URL", "https://shop.example.com")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("PRICEWATCH_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("PRICEWATCH_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires embedding.api_key in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("PRICEWATCH_EMBEDDING_API_KEY")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding.api_key is required in production")
	})

	t.Run("requires catalog_api.base_url in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("PRICEWATCH_CATALOG_API_BASE_URL")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog_api.base_url is required in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	t.Run("empty host means disabled", func(t *testing.T) {
		cfg := RedisConfig{Port: 6379}
		assert.Equal(t, "", cfg.Addr())
	})

	t.Run("joins host and port", func(t *testing.T) {
		cfg := RedisConfig{Host: "cache.local", Port: 6380}
		assert.Equal(t, "cache.local:6380", cfg.Addr())
	})
}
