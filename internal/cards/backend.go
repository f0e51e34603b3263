// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cards

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/flashcard-engine/internal/httputil"
	"github.com/pdiddy/flashcard-engine/pkg/types"
)

// NewBackend constructs the backend selected by cfg.Provider.
func NewBackend(ctx context.Context, cfg types.AIConfig, apiKey string) (Backend, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		doer := httputil.NewHeaderClient(&http.Client{}, http.Header{"User-Agent": {cfg.UserAgent}})
		return NewOpenAIBackend(apiKey, cfg.Model, cfg.BaseURL, doer)
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, apiKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
