package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileValidateDefaults(t *testing.T) {
	p := &Profile{}
	require.NoError(t, p.Validate())

	assert.Equal(t, "dev", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, "wordfolio.db", p.DSN)
	assert.Equal(t, "https://api.openai.com/v1", p.AIBaseURL)
	assert.Equal(t, "gpt-4o-mini", p.AIModel)
	assert.Equal(t, 30*time.Second, p.AITimeout)
	assert.Equal(t, "fr", p.DefaultTargetLanguage)
	assert.Equal(t, "en", p.DefaultNativeLanguage)
	assert.Equal(t, "A1", p.DefaultLevel)
	assert.Equal(t, "General", p.DefaultInterest)
	assert.Equal(t, "Neutral", p.DefaultTone)
}

func TestProfileValidateRejects(t *testing.T) {
	t.Run("UnknownDriver", func(t *testing.T) {
		p := &Profile{Driver: "mysql"}
		assert.Error(t, p.Validate())
	})

	t.Run("UnknownMode", func(t *testing.T) {
		p := &Profile{Mode: "demo"}
		assert.Error(t, p.Validate())
	})

	t.Run("PostgresWithoutDSN", func(t *testing.T) {
		p := &Profile{Driver: "postgres"}
		assert.Error(t, p.Validate())
	})
}

func TestProfileFromEnv(t *testing.T) {
	t.Setenv("WORDFOLIO_DRIVER", "postgres")
	t.Setenv("WORDFOLIO_DSN", "postgres://wf:wf@localhost:5432/wordfolio?sslmode=disable")
	t.Setenv("WORDFOLIO_AI_ENABLED", "true")
	t.Setenv("WORDFOLIO_AI_API_KEY", "sk-test")
	t.Setenv("WORDFOLIO_AI_TIMEOUT_SECONDS", "5")
	t.Setenv("WORDFOLIO_DEFAULT_TARGET_LANGUAGE", "es")

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, "postgres", p.Driver)
	assert.True(t, p.IsAIEnabled())
	assert.Equal(t, 5*time.Second, p.AITimeout)
	assert.Equal(t, "es", p.DefaultTargetLanguage)
	// Unset values get defaults.
	assert.Equal(t, "A1", p.DefaultLevel)
}
