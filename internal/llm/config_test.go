package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetModel(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierFast))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierQuality))
}

func TestGetModelFallsBackToFast(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierFast: "only-model"},
	}

	assert.Equal(t, "only-model", config.GetModel(TierQuality))
}

func TestGetModelNoModels(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}

	assert.Empty(t, config.GetModel(TierQuality))
}

func TestWithModel(t *testing.T) {
	original := DefaultGeminiConfig()
	modified := original.WithModel(TierQuality, "custom-model")

	assert.Equal(t, "custom-model", modified.GetModel(TierQuality))
	assert.Equal(t, "gemini-2.5-pro", original.GetModel(TierQuality), "original must not change")
	assert.Equal(t, original.GetModel(TierFast), modified.GetModel(TierFast))
}
