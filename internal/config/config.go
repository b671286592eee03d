// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Staging  StagingConfig  `yaml:"staging"`
	ASR      ServiceConfig  `yaml:"asr"`
	LLM      ServiceConfig  `yaml:"llm"`
	Platform PlatformConfig `yaml:"platform"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Inbox    InboxConfig    `yaml:"inbox"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	MaxConns int    `yaml:"max_conns"`
}

type StagingConfig struct {
	Root string `yaml:"root"`
}

// ServiceConfig points at one external HTTP capability.
type ServiceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PlatformConfig points at the chat-platform API endpoints.
type PlatformConfig struct {
	APIURL   string        `yaml:"api_url"`
	FilesURL string        `yaml:"files_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type FFmpegConfig struct {
	Binary string `yaml:"binary"`
}

type GatewayConfig struct {
	Addr string `yaml:"addr"`
}

// InboxConfig enables the local drop-directory watcher. Files created in Dir
// are processed as if uploaded by ChatID.
type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	ChatID  int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration file at path. Environment variables
// VOICEINSIGHT_ASR_URL, VOICEINSIGHT_LLM_URL and VOICEINSIGHT_PLATFORM_URL
// override their file counterparts so deployments can relocate the
// collaborators without editing the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("VOICEINSIGHT_ASR_URL"); v != "" {
		cfg.ASR.URL = v
	}
	if v := os.Getenv("VOICEINSIGHT_LLM_URL"); v != "" {
		cfg.LLM.URL = v
	}
	if v := os.Getenv("VOICEINSIGHT_PLATFORM_URL"); v != "" {
		cfg.Platform.APIURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings and fills defaults.
func (c *Config) Validate() error {
	if c.ASR.URL == "" {
		return fmt.Errorf("asr.url is required")
	}
	if c.LLM.URL == "" {
		return fmt.Errorf("llm.url is required")
	}
	if c.Platform.APIURL == "" {
		return fmt.Errorf("platform.api_url is required")
	}
	if c.Inbox.Enabled && c.Inbox.Dir == "" {
		return fmt.Errorf("inbox.dir is required when inbox.enabled")
	}

	if c.Database.Path == "" {
		c.Database.Path = "voiceinsight.db"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 4
	}
	if c.Staging.Root == "" {
		c.Staging.Root = "files"
	}
	if c.ASR.Timeout == 0 {
		c.ASR.Timeout = 10 * time.Minute
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 5 * time.Minute
	}
	if c.Platform.Timeout == 0 {
		c.Platform.Timeout = time.Minute
	}
	if c.Platform.FilesURL == "" {
		c.Platform.FilesURL = c.Platform.APIURL
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.Gateway.Addr == "" {
		c.Gateway.Addr = ":8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
