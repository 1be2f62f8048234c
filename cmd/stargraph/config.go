package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Provider string `env:"STARGRAPH_PROVIDER,default=gemini"`
	Model    string `env:"STARGRAPH_MODEL"`
	LogLevel string `env:"STARGRAPH_LOG_LEVEL,default=warn"`

	// Gemini and Claude use Vertex AI when no API key is set
	GoogleProjectID string `env:"GOOGLE_PROJECT_ID"`
	GoogleRegion    string `env:"GOOGLE_REGION,default=us-central1"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*config, error) {
	var cfg config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	cfg.Provider = strings.ToLower(cfg.Provider)
	return &cfg, nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// withLogger installs a stderr text logger on ctx
func withLogger(ctx context.Context, level slog.Level) context.Context {
	logger := clog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return clog.WithLogger(ctx, logger)
}
