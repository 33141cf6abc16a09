package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults with secret set", func(t *testing.T) {
		t.Setenv("BOOKMARKS_JWT_SECRET", "test-secret")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, "1323", cfg.Port)
		assert.Equal(t, "disable", cfg.DBSSLMode)
		assert.Equal(t, "test-secret", cfg.JWTSecret)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("BOOKMARKS_JWT_SECRET", "")

		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("invalid ssl mode", func(t *testing.T) {
		t.Setenv("BOOKMARKS_JWT_SECRET", "test-secret")
		t.Setenv("BOOKMARKS_DB_SSL_MODE", "sometimes")

		_, err := NewConfig()
		assert.Error(t, err)
	})
}
