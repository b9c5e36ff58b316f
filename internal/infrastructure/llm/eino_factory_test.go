package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/workflow/port"
)

func newFactory() *EinoFactory {
	return NewEinoFactory(&config.Config{LLM: config.LLMConfig{
		BaseURL:     "https://api.example.com/v1",
		Model:       "default-model",
		Temperature: 0.7,
		MaxTokens:   1024,
	}})
}

func TestResolveFillsDefaults(t *testing.T) {
	spec := newFactory().Resolve(port.ModelSpec{APIKey: "k"})
	require.Equal(t, "https://api.example.com/v1", spec.BaseURL)
	require.Equal(t, "default-model", spec.Model)

	spec = newFactory().Resolve(port.ModelSpec{APIKey: "k", BaseURL: "http://local:11434/v1", Model: "qwen"})
	require.Equal(t, "http://local:11434/v1", spec.BaseURL)
	require.Equal(t, "qwen", spec.Model)
}

func TestNewChatModelRequiresKey(t *testing.T) {
	_, err := newFactory().NewChatModel(context.Background(), port.ModelSpec{})
	require.Error(t, err)
}

func TestNewChatModel(t *testing.T) {
	m, err := newFactory().NewChatModel(context.Background(), port.ModelSpec{APIKey: "sk-test"})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestProviderName(t *testing.T) {
	require.Equal(t, "api.deepseek.com", ProviderName("https://api.deepseek.com/v1"))
	require.Equal(t, "unknown", ProviderName(""))
}
