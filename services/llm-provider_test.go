package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	provider, err := NewLLMProvider("anthropic", "key", "", "")
	require.NoError(t, err)
	assert.NotNil(t, provider)

	provider, err = NewLLMProvider("openai", "key", "", "")
	require.NoError(t, err)
	assert.NotNil(t, provider)

	provider, err = NewLLMProvider("ollama", "", "", "")
	require.NoError(t, err)
	assert.NotNil(t, provider)

	_, err = NewLLMProvider("bard", "", "", "")
	assert.Error(t, err)
}
