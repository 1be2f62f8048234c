package main

import (
	"context"
	"errors"
	"fmt"

	language "cloud.google.com/go/language/apiv1"
	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/chainguard-dev/clog"
	sdkopenai "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/claude"
	"github.com/datar-psa/stargraph/gemini"
	"github.com/datar-psa/stargraph/openai"
)

// provider is the backend selected by configuration, with the clients it owns
type provider struct {
	backend    api.Backend
	moderation api.ModerationProvider
	closers    []func() error
}

func (p *provider) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// providerFactory is replaced in tests
var providerFactory = newProvider

func newProvider(ctx context.Context, cfg *config, withModeration bool) (*provider, error) {
	p := &provider{}
	log := clog.FromContext(ctx).With("provider", cfg.Provider)

	switch cfg.Provider {
	case "gemini":
		client, err := newGenaiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.backend = gemini.NewBackend(client, cfg.Model)

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		opts := []openaioption.RequestOption{openaioption.WithAPIKey(cfg.OpenAIAPIKey)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.OpenAIBaseURL))
		}
		client := sdkopenai.NewClient(opts...)
		p.backend = openai.NewBackend(&client, cfg.Model)

	case "claude":
		var client anthropic.Client
		switch {
		case cfg.AnthropicAPIKey != "":
			client = anthropic.NewClient(anthropicoption.WithAPIKey(cfg.AnthropicAPIKey))
		case cfg.GoogleProjectID != "":
			log.With("project", cfg.GoogleProjectID).Info("Using Claude on Vertex AI")
			client = anthropic.NewClient(vertex.WithGoogleAuth(ctx, cfg.GoogleRegion, cfg.GoogleProjectID))
		default:
			return nil, errors.New("ANTHROPIC_API_KEY or GOOGLE_PROJECT_ID is required for the claude provider")
		}
		p.backend = claude.NewBackend(&client, cfg.Model)

	default:
		return nil, fmt.Errorf("unknown provider %q, want gemini, openai or claude", cfg.Provider)
	}

	if withModeration {
		client, err := language.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating language client: %w", err)
		}
		p.closers = append(p.closers, client.Close)
		p.moderation = gemini.NewLanguageModerator(client)
	}

	return p, nil
}

func newGenaiClient(ctx context.Context, cfg *config) (*genai.Client, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.GeminiAPIKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.GeminiAPIKey
	case cfg.GoogleProjectID != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.GoogleProjectID
		cc.Location = cfg.GoogleRegion
	default:
		return nil, errors.New("GEMINI_API_KEY or GOOGLE_PROJECT_ID is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return client, nil
}
