package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := require.New(t)

		// t.Setenv registers the restore; Unsetenv makes the variable
		// genuinely absent for the duration of the test.
		for _, key := range []string{"PORT", "DEBUG", "MODEL_NAME", "MODEL_CACHE_DIR", "MODEL_HUB_URL"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		cfg, err := Load()
		req.NoError(err)
		req.Equal(8080, cfg.Port)
		req.False(cfg.Debug)
		req.Equal("umm-maybe/AI-image-detector", cfg.ModelName)
		req.Equal("models", cfg.ModelCacheDir)
		req.Equal("https://huggingface.co", cfg.ModelHubURL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		req := require.New(t)

		t.Setenv("PORT", "9090")
		t.Setenv("DEBUG", "true")
		t.Setenv("MODEL_NAME", "acme/other-detector")
		t.Setenv("HF_TOKEN", "hf_secret")
		t.Setenv("MODEL_CACHE_DIR", "/tmp/models")
		t.Setenv("MODEL_HUB_URL", "http://hub.local")

		cfg, err := Load()
		req.NoError(err)
		req.Equal(9090, cfg.Port)
		req.True(cfg.Debug)
		req.Equal("acme/other-detector", cfg.ModelName)
		req.Equal("hf_secret", cfg.HFToken)
		req.Equal("/tmp/models", cfg.ModelCacheDir)
		req.Equal("http://hub.local", cfg.ModelHubURL)
	})

	t.Run("rejects unparsable port", func(t *testing.T) {
		req := require.New(t)

		t.Setenv("PORT", "not-a-port")

		_, err := Load()
		req.Error(err)
		req.Contains(err.Error(), "config error")
	})
}
