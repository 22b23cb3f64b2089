package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"API_BASE_URL", "SERVER_PORT", "FIELD_STORE", "FIELDS_FILE", "BACKEND_TIMEOUT", "STATUS_AUTO_HIDE", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, StoreMemory, cfg.FieldStore)
	assert.Equal(t, 5*time.Second, cfg.StatusAutoHide)
	assert.Zero(t, cfg.BackendTimeout)
	assert.Contains(t, cfg.FieldsFile, ".vidpace")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://mail.example.com")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FIELD_STORE", "file")
	t.Setenv("FIELDS_FILE", "/tmp/fields.yaml")
	t.Setenv("BACKEND_TIMEOUT", "30s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://mail.example.com", cfg.APIBaseURL)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, StoreFile, cfg.FieldStore)
	assert.Equal(t, "/tmp/fields.yaml", cfg.FieldsFile)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"FIELD_STORE":     "sqlite",
		"LOG_FORMAT":      "xml",
		"BACKEND_TIMEOUT": "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("FIELD_STORE", "memory")
			t.Setenv("LOG_FORMAT", "text")
			t.Setenv("BACKEND_TIMEOUT", "0s")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
