// Package config reads the service configuration from the environment.
// Values are read exactly once at startup; there is no hot reload.
package config

import (
	"fmt"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT,default=8080"`
	// Debug enables gin debug mode and verbose text logging.
	Debug bool `env:"DEBUG,default=false"`
	// ModelName identifies the classification model on the hub.
	ModelName string `env:"MODEL_NAME,default=umm-maybe/AI-image-detector"`
	// HFToken grants access to private hub models. Optional.
	HFToken string `env:"HF_TOKEN"`
	// ModelCacheDir is where fetched model artifacts are stored.
	ModelCacheDir string `env:"MODEL_CACHE_DIR,default=models"`
	// ModelHubURL is the artifact hub base URL.
	ModelHubURL string `env:"MODEL_HUB_URL,default=https://huggingface.co"`
	// OnnxRuntimeLib optionally points at the onnxruntime shared library.
	OnnxRuntimeLib string `env:"ONNXRUNTIME_SHARED_LIBRARY"`
}

// Load reads a local .env file when present, then the process
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if cfg.ModelName == "" {
		return Config{}, fmt.Errorf("MODEL_NAME must not be empty")
	}
	return cfg, nil
}
