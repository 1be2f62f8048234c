package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/datar-psa/stargraph/suite"
)

type evalFlags struct {
	suitePath string
	content   string
	provider  string
	model     string
	pretty    bool
}

func newEvalCmd() *cobra.Command {
	var flags evalFlags

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate content against a criteria suite",
		Long: "Evaluate reads content from --content (a file path, or - for stdin) and judges it\n" +
			"against every criterion of the suite. Provider credentials are read from the\n" +
			"environment (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or GOOGLE_PROJECT_ID).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEval(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.suitePath, "suite", "s", "", "Path to the criteria suite (YAML or JSON, required)")
	f.StringVarP(&flags.content, "content", "c", "-", "Path to the content to evaluate, - for stdin")
	f.StringVar(&flags.provider, "provider", "", "Model provider: gemini, openai or claude (overrides STARGRAPH_PROVIDER)")
	f.StringVar(&flags.model, "model", "", "Model name (overrides STARGRAPH_MODEL and the suite model)")
	f.BoolVar(&flags.pretty, "pretty", false, "Indent the JSON report")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func runEval(cmd *cobra.Command, flags evalFlags) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, envconfig.OsLookuper())
	if err != nil {
		return err
	}
	if flags.provider != "" {
		cfg.Provider = strings.ToLower(flags.provider)
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx = withLogger(ctx, level)

	s, err := suite.LoadFile(flags.suitePath)
	if err != nil {
		return err
	}

	content, err := readContent(cmd.InOrStdin(), flags.content)
	if err != nil {
		return err
	}

	p, err := providerFactory(ctx, cfg, s.HasModeration())
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Closing provider clients")
		}
	}()

	buildOpts := []func(*suite.BuildOptions){suite.WithModerationProvider(p.moderation)}
	if cfg.Model != "" {
		buildOpts = append(buildOpts, suite.WithModel(cfg.Model))
	}
	runner, err := s.Build(p.backend, buildOpts...)
	if err != nil {
		return err
	}

	clog.InfoContextf(ctx, "Evaluating suite %q with provider %s", s.Name, cfg.Provider)
	report, err := runner.Run(ctx, content)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if flags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

func readContent(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("content is empty")
	}
	return string(data), nil
}
