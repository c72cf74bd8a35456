package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the services need. It is loaded once in main
// and handed to constructors explicitly, nothing reads the environment later.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	GroqAPIKey   string `env:"GROQ_API_KEY"`
	GroqBaseURL  string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	WhisperModel string `env:"WHISPER_MODEL" envDefault:"whisper-large-v3"`

	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	DatabaseURL string `env:"DATABASE_URL"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`

	TelegramToken  string `env:"TELEGRAM_ALERT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_ALERT_CHAT_ID"`

	// auto target resolution: detected AutoPairSource maps to AutoPairTarget,
	// everything else (including "unknown") maps to AutoFallback
	AutoPairSource string `env:"AUTO_PAIR_SOURCE" envDefault:"en"`
	AutoPairTarget string `env:"AUTO_PAIR_TARGET" envDefault:"ur"`
	AutoFallback   string `env:"AUTO_FALLBACK" envDefault:"en"`

	TranslateMaxAttempts  int           `env:"TRANSLATE_MAX_ATTEMPTS" envDefault:"2"`
	TranslateRetryBackoff time.Duration `env:"TRANSLATE_RETRY_BACKOFF" envDefault:"1s"`

	StageTimeout time.Duration `env:"STAGE_TIMEOUT" envDefault:"60s"`

	AudioDir       string        `env:"AUDIO_DIR"`
	AudioTTL       time.Duration `env:"AUDIO_TTL" envDefault:"1h"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	if cfg.AudioDir == "" {
		// service-owned subdirectory: the janitor reaps *.mp3 here, so it
		// must never point at the shared temp dir itself
		cfg.AudioDir = filepath.Join(os.TempDir(), "voice_translator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.TranslateMaxAttempts < 1 {
		return fmt.Errorf("TRANSLATE_MAX_ATTEMPTS must be at least 1, got %d", c.TranslateMaxAttempts)
	}
	if c.StageTimeout <= 0 {
		return fmt.Errorf("STAGE_TIMEOUT must be positive, got %s", c.StageTimeout)
	}
	if c.AutoPairSource == "" || c.AutoPairTarget == "" || c.AutoFallback == "" {
		return fmt.Errorf("AUTO_PAIR_SOURCE, AUTO_PAIR_TARGET and AUTO_FALLBACK must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// S3Configured reports whether all S3 settings are present.
func (c *Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

// AlertsConfigured reports whether the telegram failure notifier can run.
func (c *Config) AlertsConfigured() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
