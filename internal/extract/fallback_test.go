package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackLLMClient(t *testing.T) {
	ok := &stubLLMClient{responses: []LLMResponse{{Text: "fallback"}}}
	primaryErr := errors.New("primary down")

	t.Run("primary succeeds", func(t *testing.T) {
		primary := &stubLLMClient{responses: []LLMResponse{{Text: "primary"}}}
		fallback := &stubLLMClient{}
		resp, err := NewFallbackLLMClient(primary, fallback, nil).Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "primary", resp.Text)
		assert.Empty(t, fallback.requests)
	})

	t.Run("falls back", func(t *testing.T) {
		resp, err := NewFallbackLLMClient(&stubLLMClient{err: primaryErr}, ok, nil).Complete(context.Background(), LLMRequest{})
		require.NoError(t, err)
		assert.Equal(t, "fallback", resp.Text)
	})

	t.Run("no fallback", func(t *testing.T) {
		_, err := NewFallbackLLMClient(&stubLLMClient{err: primaryErr}, nil, nil).Complete(context.Background(), LLMRequest{})
		assert.ErrorIs(t, err, primaryErr)
	})

	t.Run("both fail", func(t *testing.T) {
		fallbackErr := errors.New("fallback down")
		_, err := NewFallbackLLMClient(&stubLLMClient{err: primaryErr}, &stubLLMClient{err: fallbackErr}, nil).Complete(context.Background(), LLMRequest{})
		assert.ErrorIs(t, err, fallbackErr)
	})
}
