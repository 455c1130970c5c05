package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:        tt.env,
				DBSSLMode:  tt.sslMode,
				DBDriver:   "postgres",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "secure-password",
				Port:       "8080",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:                "development",
			DBDriver:           "postgres",
			JWTSecret:          "secure-secret-at-least-32-chars-long",
			Port:               "8080",
			TracingSampleRatio: 1,
		}
	}

	t.Run("missing port", func(t *testing.T) {
		c := base()
		c.Port = ""
		assert.Error(t, c.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := base()
		c.DBDriver = "mysql"
		assert.Error(t, c.Validate())
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		c := base()
		c.TracingSampleRatio = 1.5
		assert.Error(t, c.Validate())
	})

	t.Run("default secret in production", func(t *testing.T) {
		c := base()
		c.Env = "production"
		c.JWTSecret = defaultJWTSecret
		c.DBPassword = "strong"
		c.DBSSLMode = "require"
		assert.Error(t, c.Validate())
	})

	t.Run("sqlite in production", func(t *testing.T) {
		c := base()
		c.Env = "production"
		c.DBDriver = "sqlite"
		c.DBPassword = "strong"
		c.DBSSLMode = "require"
		assert.Error(t, c.Validate())
	})
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", " SQLite ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, 60, c.CacheTTLSeconds)
}
