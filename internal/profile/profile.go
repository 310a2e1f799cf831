package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the runtime configuration for the wordfolio backend.
// It is resolved once at startup; components receive the struct and
// never read environment variables themselves.
type Profile struct {
	// Mode can be "prod" or "dev".
	Mode string
	// Driver is the database driver (sqlite or postgres).
	Driver string
	// DSN points to where wordfolio stores its data.
	DSN string

	// Generation provider configuration.
	AIEnabled bool          // WORDFOLIO_AI_ENABLED
	AIBaseURL string        // WORDFOLIO_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey  string        // WORDFOLIO_AI_API_KEY
	AIModel   string        // WORDFOLIO_AI_MODEL (default: gpt-4o-mini)
	AITimeout time.Duration // WORDFOLIO_AI_TIMEOUT_SECONDS (default: 30s)

	// Personalization defaults, used for anonymous users and unset
	// profile fields.
	DefaultTargetLanguage string // WORDFOLIO_DEFAULT_TARGET_LANGUAGE (default: fr)
	DefaultNativeLanguage string // WORDFOLIO_DEFAULT_NATIVE_LANGUAGE (default: en)
	DefaultLevel          string // WORDFOLIO_DEFAULT_LEVEL (default: A1)
	DefaultInterest       string // WORDFOLIO_DEFAULT_INTEREST (default: General)
	DefaultTone           string // WORDFOLIO_DEFAULT_TONE (default: Neutral)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if generation is enabled and an API key or a
// custom base URL (e.g. a local OpenAI-compatible server) is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIAPIKey != "" || p.AIBaseURL != "")
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string) bool {
	value := strings.ToLower(os.Getenv(key))
	return value == "1" || value == "true" || value == "yes"
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// FromEnv loads configuration from WORDFOLIO_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("WORDFOLIO_MODE", p.Mode)
	p.Driver = getEnvOrDefault("WORDFOLIO_DRIVER", p.Driver)
	p.DSN = getEnvOrDefault("WORDFOLIO_DSN", p.DSN)

	if os.Getenv("WORDFOLIO_AI_ENABLED") != "" {
		p.AIEnabled = getBoolEnv("WORDFOLIO_AI_ENABLED")
	}
	p.AIBaseURL = getEnvOrDefault("WORDFOLIO_AI_BASE_URL", p.AIBaseURL)
	p.AIAPIKey = getEnvOrDefault("WORDFOLIO_AI_API_KEY", p.AIAPIKey)
	p.AIModel = getEnvOrDefault("WORDFOLIO_AI_MODEL", p.AIModel)
	if seconds := getIntEnvOrDefault("WORDFOLIO_AI_TIMEOUT_SECONDS", 0); seconds > 0 {
		p.AITimeout = time.Duration(seconds) * time.Second
	}

	p.DefaultTargetLanguage = getEnvOrDefault("WORDFOLIO_DEFAULT_TARGET_LANGUAGE", p.DefaultTargetLanguage)
	p.DefaultNativeLanguage = getEnvOrDefault("WORDFOLIO_DEFAULT_NATIVE_LANGUAGE", p.DefaultNativeLanguage)
	p.DefaultLevel = getEnvOrDefault("WORDFOLIO_DEFAULT_LEVEL", p.DefaultLevel)
	p.DefaultInterest = getEnvOrDefault("WORDFOLIO_DEFAULT_INTEREST", p.DefaultInterest)
	p.DefaultTone = getEnvOrDefault("WORDFOLIO_DEFAULT_TONE", p.DefaultTone)
}

// Validate applies defaults for unset values and rejects unusable
// configurations.
func (p *Profile) Validate() error {
	if p.Mode == "" {
		p.Mode = "dev"
	}
	if p.Mode != "prod" && p.Mode != "dev" {
		return errors.Errorf("invalid mode %q: must be prod or dev", p.Mode)
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("invalid driver %q: only sqlite and postgres are supported", p.Driver)
	}
	if p.DSN == "" {
		if p.Driver == "sqlite" {
			p.DSN = "wordfolio.db"
		} else {
			return errors.New("DSN is required for the postgres driver")
		}
	}

	if p.AIBaseURL == "" {
		p.AIBaseURL = "https://api.openai.com/v1"
	}
	if p.AIModel == "" {
		p.AIModel = "gpt-4o-mini"
	}
	if p.AITimeout <= 0 {
		p.AITimeout = 30 * time.Second
	}

	if p.DefaultTargetLanguage == "" {
		p.DefaultTargetLanguage = "fr"
	}
	if p.DefaultNativeLanguage == "" {
		p.DefaultNativeLanguage = "en"
	}
	if p.DefaultLevel == "" {
		p.DefaultLevel = "A1"
	}
	if p.DefaultInterest == "" {
		p.DefaultInterest = "General"
	}
	if p.DefaultTone == "" {
		p.DefaultTone = "Neutral"
	}
	return nil
}

// New creates a profile from the environment with defaults applied.
func New() (*Profile, error) {
	p := &Profile{}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}

func (p *Profile) String() string {
	return fmt.Sprintf("mode=%s driver=%s ai_enabled=%t", p.Mode, p.Driver, p.IsAIEnabled())
}
