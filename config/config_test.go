package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "REDIS_ADDR", "DEFAULT_ACCOUNT", "RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "./data/ledger.db", c.DB.Path)
	assert.Equal(t, "default", c.DefaultAccount)
	assert.Equal(t, "120-M", c.RateLimit)
	assert.False(t, c.Redis.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	c := Load()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "postgres://ledger@localhost/ledger", c.DB.URL)
	assert.True(t, c.Redis.Enabled())
}
