package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Env            string `validate:"required"`
	Port           string `validate:"required,numeric"`
	LogLevel       string `validate:"oneof=debug info warn error"`
	PublicBaseURL  string `validate:"required,url"`
	UseMemoryStore bool
	DatabaseURL    string

	CORSAllowOrigins string

	DisableWebhookValidation bool

	HubSpot   HubSpotConfig
	Twilio    TwilioConfig
	Voice     VoiceConfig
	AI        AIConfig
	Poller    PollerConfig
	Retry     RetryConfig
	Scheduler SchedulerConfig
}

type HubSpotConfig struct {
	APIKey        string
	BaseURL       string `validate:"required,url"`
	WebhookSecret string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	// SendRate is the sustained number of outbound messages/calls per second.
	SendRate float64 `validate:"gt=0"`
}

// VoiceConfig holds the numbers the IVR and inbound voice webhook dial.
type VoiceConfig struct {
	SpecialistPrimary  string `validate:"required,e164"`
	SpecialistFallback string `validate:"required,e164"`
	InboundForward     string `validate:"required,e164"`
}

type AIConfig struct {
	Provider     string `validate:"oneof=openai gemini"`
	OpenAIAPIKey string
	OpenAIModel  string `validate:"required"`
	GeminiAPIKey string
	GeminiModel  string `validate:"required"`
}

type PollerConfig struct {
	Interval time.Duration `validate:"min=1s"`
	PageSize int           `validate:"min=1,max=100"`
}

type RetryConfig struct {
	Attempts int           `validate:"min=1"`
	Delay    time.Duration `validate:"min=1ms"`
}

// SchedulerConfig configures the optional asynq callback queue. Empty RedisURL disables it.
type SchedulerConfig struct {
	RedisURL    string
	Queue       string `validate:"required"`
	Concurrency int    `validate:"min=1"`
}

// Enabled reports whether scheduled callbacks are backed by Redis.
func (s SchedulerConfig) Enabled() bool {
	return strings.TrimSpace(s.RedisURL) != ""
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "production"),
		Port:                     getEnv("PORT", "5000"),
		LogLevel:                 strings.ToLower(getEnv("LOG_LEVEL", "info")),
		PublicBaseURL:            strings.TrimRight(getEnv("PUBLIC_BASE_URL", getEnv("NGROK_URL", "http://localhost:5000")), "/"),
		UseMemoryStore:           getBool("USE_MEMORY_STORE", false),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		CORSAllowOrigins:         getEnv("CORS_ALLOW_ORIGINS", "*"),
		DisableWebhookValidation: getBool("DISABLE_WEBHOOK_VALIDATION", false),
		HubSpot: HubSpotConfig{
			APIKey:        getEnv("HUBSPOT_API_KEY", ""),
			BaseURL:       strings.TrimRight(getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"), "/"),
			WebhookSecret: getEnv("HUBSPOT_WEBHOOK_SECRET", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
			SendRate:    getFloat("TWILIO_SEND_RATE", 1),
		},
		Voice: VoiceConfig{
			SpecialistPrimary:  getEnv("SPECIALIST_PRIMARY_NUMBER", "+18334268672"),
			SpecialistFallback: getEnv("SPECIALIST_FALLBACK_NUMBER", "+12185683118"),
			InboundForward:     getEnv("INBOUND_FORWARD_NUMBER", "+12185683118"),
		},
		AI: AIConfig{
			Provider:     strings.ToLower(getEnv("AI_PROVIDER", "openai")),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Poller: PollerConfig{
			Interval: getDuration("POLL_INTERVAL", 60*time.Second),
			PageSize: getInt("POLL_PAGE_SIZE", 10),
		},
		Retry: RetryConfig{
			Attempts: getInt("RETRY_ATTEMPTS", 3),
			Delay:    getDuration("RETRY_DELAY", 2*time.Second),
		},
		Scheduler: SchedulerConfig{
			RedisURL:    getEnv("REDIS_URL", ""),
			Queue:       getEnv("ASYNQ_QUEUE", "callbacks"),
			Concurrency: getInt("ASYNQ_CONCURRENCY", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags, then the rules that depend on other fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !c.UseMemoryStore {
		if c.HubSpot.APIKey == "" {
			return fmt.Errorf("HUBSPOT_API_KEY is required unless USE_MEMORY_STORE is true")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required unless USE_MEMORY_STORE is true")
		}
	}
	if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.PhoneNumber == "" {
		return fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER are required")
	}
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
		}
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
		}
	}
	return nil
}

// IsDevelopment reports whether APP_ENV=development was set explicitly.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}
