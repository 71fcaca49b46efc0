// Package config loads the service configuration. Settings come from an
// optional YAML file plus INTERVIEW_-prefixed environment variables, with
// the environment winning. Scoring constants live in a separate weights
// file so tuning them never touches service config.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Capture struct {
	CameraURL      string  `mapstructure:"camera_url"`
	VisionURL      string  `mapstructure:"vision_url"`
	FPS            float64 `mapstructure:"fps"`
	LogIntervalSec int     `mapstructure:"log_interval_sec"`
}

type Judge struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type Paths struct {
	Exports string `mapstructure:"exports"`
	Outputs string `mapstructure:"outputs"`
	Weights string `mapstructure:"weights"`
}

type Root struct {
	Pipeline struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		LogLvl  string `mapstructure:"log_level"`
	} `mapstructure:"pipeline"`
	Server  Server  `mapstructure:"server"`
	Capture Capture `mapstructure:"capture"`
	Judge   Judge   `mapstructure:"judge"`
	Paths   Paths   `mapstructure:"paths"`
}

func Load() (*Root, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("config", env))
	v.AddConfigPath("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("INTERVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default so the env binding sees it
	v.SetDefault("pipeline.name", "interview-pipeline")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3005)
	v.SetDefault("capture.camera_url", "http://127.0.0.1:8089")
	v.SetDefault("capture.vision_url", "http://127.0.0.1:8090")
	v.SetDefault("capture.fps", 6.0)
	v.SetDefault("capture.log_interval_sec", 10)
	v.SetDefault("judge.base_url", "")
	v.SetDefault("judge.api_key", "")
	v.SetDefault("judge.model", "")
	v.SetDefault("paths.exports", "exports")
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("paths.weights", filepath.Join("config", "weights.yaml"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Judge.APIKey == "" {
		cfg.Judge.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return &cfg, nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
