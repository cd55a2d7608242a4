package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("MAX_ITERATIONS", "")

	cfg := Load()

	assert.Equal(t, defaultOpenAIBaseURL, cfg.OpenAIBaseURL)
	assert.Equal(t, defaultOpenAIModel, cfg.OpenAIModel)
	assert.Equal(t, defaultLinkedinVer, cfg.LinkedinVersion)
	assert.Equal(t, defaultUploadsDir, cfg.UploadsDir)
	assert.Equal(t, defaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, defaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("MAX_ITERATIONS", "3")

	cfg := Load()

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxIterations)
}

func TestEventRegistryKeyFallbacks(t *testing.T) {
	t.Setenv("EVENTREGISTRY_API_KEY", "")
	t.Setenv("NEWSAPI_KEY", "fallback-key")

	cfg := Load()
	assert.Equal(t, "fallback-key", cfg.EventRegistryKey)
}

func TestFeatureChecks(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.CheckSearch())
	require.Error(t, cfg.CheckGeneration())

	cfg.OpenAIKey = "sk-test"
	cfg.EventRegistryKey = "er-test"
	require.NoError(t, cfg.CheckSearch())
	require.NoError(t, cfg.CheckGeneration())
}
