package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/subtrans/internal/config"
	"github.com/mgpai22/subtrans/internal/lookup"
	"github.com/mgpai22/subtrans/internal/pipeline"
	"github.com/mgpai22/subtrans/internal/subtitle"
	"github.com/mgpai22/subtrans/internal/translate"
	"github.com/spf13/cobra"
)

// Flag defaults mirror config.setDefaults so --help shows real values;
// viper only takes a flag into account once it has been set.

func addProviderFlags(cmd *cobra.Command) {
	cmd.Flags().
		String("provider", string(translate.ProviderGemini), "Model provider (gemini, openai, anthropic, ollama)")
	cmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	cmd.Flags().
		String("base-url", "", "OpenAI-compatible endpoint, e.g. a local Ollama server")
	cmd.Flags().
		Float64("temperature", 0, "Sampling temperature (provider default when unset)")
	cmd.Flags().
		Int("max-tokens", translate.DefaultMaxTokens, "Maximum tokens per model reply")
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().
		Int("chunk-size", subtitle.DefaultChunkSize, "Number of subtitles per chunk")
	cmd.Flags().
		Int("max-rounds", pipeline.DefaultMaxRounds, "Maximum model rounds per chunk")
	cmd.Flags().
		Int("chunk-retries", pipeline.DefaultChunkRetries, "Retries for a chunk that produced no usable output")
	addFormatFlags(cmd)
}

func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().
		Int("max-lines", subtitle.DefaultMaxLines, "Maximum lines per subtitle")
	cmd.Flags().
		Int("max-line-length", subtitle.DefaultMaxLineLength, "Maximum characters per subtitle line")
}

func addLookupFlags(cmd *cobra.Command) {
	cmd.Flags().
		Bool("lookup", true, "Allow dictionary lookups during translation")
	cmd.Flags().
		String("lookup-url", lookup.DefaultBaseURL, "Wiktionary definition endpoint")
	cmd.Flags().
		Int("max-attempts", lookup.DefaultMaxAttempts, "Attempts per dictionary lookup")
	cmd.Flags().
		Int("max-words", lookup.DefaultMaxWords, "Maximum words per dictionary lookup")
}

// loadConfig merges defaults, config file, environment and cmd's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newModel(ctx context.Context, cfg *config.Config) (translate.Model, error) {
	provider := translate.Provider(cfg.Provider.Name)
	if cfg.NeedsAPIKey() && cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			translate.APIKeyEnv(provider),
		)
	}

	model, err := translate.Factory(ctx, provider, cfg.Provider.APIKey, translate.Options{
		Model:       cfg.Provider.Model,
		BaseURL:     cfg.Provider.BaseURL,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	return model, nil
}

// newLookup returns nil when lookups are disabled.
func newLookup(cfg *config.Config) lookup.Service {
	if !cfg.Lookup.Enabled {
		return nil
	}
	return lookup.New(
		lookup.WithBaseURL(cfg.Lookup.BaseURL),
		lookup.WithTimeout(cfg.Lookup.Timeout),
		lookup.WithRateLimit(cfg.Lookup.RateLimit, int(cfg.Lookup.RateLimit)),
		lookup.WithLogger(logger),
	)
}

func newOrchestrator(ctx context.Context, cfg *config.Config) (*pipeline.Orchestrator, lookup.Service, error) {
	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := newLookup(cfg)

	orch := pipeline.NewOrchestrator(model, svc, pipeline.Options{
		MaxRounds:         cfg.Pipeline.MaxRounds,
		MaxLines:          cfg.Pipeline.MaxLines,
		MaxLineLength:     cfg.Pipeline.MaxLineLength,
		MaxFormatAttempts: cfg.Pipeline.MaxFormatAttempts,
		MaxLookupRounds:   pipeline.DefaultMaxLookupRounds,
		LookupMaxAttempts: cfg.Lookup.MaxAttempts,
		LookupMaxWords:    cfg.Lookup.MaxWords,
	}, logger)
	return orch, svc, nil
}

func documentOptions(cfg *config.Config) pipeline.DocumentOptions {
	return pipeline.DocumentOptions{
		SourceLanguage: cfg.Pipeline.SourceLanguage,
		TargetLanguage: cfg.Pipeline.TargetLanguage,
		ChunkSize:      cfg.Pipeline.ChunkSize,
		MaxRounds:      cfg.Pipeline.MaxRounds,
		ChunkRetries:   cfg.Pipeline.ChunkRetries,
		MaxLineLength:  cfg.Pipeline.MaxLineLength,
	}
}
