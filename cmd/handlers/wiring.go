package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"ideaforge/internal/config"
	"ideaforge/internal/critic"
	"ideaforge/internal/ideas"
	"ideaforge/internal/knowledge"
	"ideaforge/internal/llm"
	"ideaforge/internal/messaging"
	"ideaforge/internal/notion"
	"ideaforge/internal/observability"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/render"
	"ideaforge/internal/store"
)

func openStore(cfg *config.Config) (store.Store, error) {
	st, err := store.Open(store.Options{
		Backend: cfg.Store.Backend,
		DataDir: cfg.App.DataDir,
		DSN:     cfg.Store.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	return st, nil
}

func newRenderer(cfg *config.Config) *render.Renderer {
	return render.NewRenderer(render.Options{
		ReportsDir:   cfg.Output.ReportsDir,
		LandingDir:   cfg.Output.LandingDir,
		DashboardDir: cfg.Output.DashboardDir,
	})
}

// newLLMClient builds the configured primary provider and, when the other
// provider has credentials, a fallback.
func newLLMClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*llm.Client, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}

	var gemini, openai llm.Provider
	if key := cfg.AI.Gemini.APIKey; key != "" {
		p, err := llm.NewGeminiProvider(ctx, key, cfg.AI.Gemini.Model)
		if err != nil {
			return nil, err
		}
		gemini = p
	}
	if key := cfg.AI.OpenAI.APIKey; key != "" {
		p, err := llm.NewOpenAIProvider(key, cfg.AI.OpenAI.Model, cfg.AI.OpenAI.BaseURL)
		if err != nil {
			return nil, err
		}
		openai = p
	}

	primary, secondary := gemini, openai
	if cfg.AI.Provider == "openai" {
		primary, secondary = openai, gemini
	}
	if primary == nil {
		log.Warn("Primary LLM provider has no credentials, using fallback only", "provider", cfg.AI.Provider)
		primary, secondary = secondary, nil
	}

	policy := llm.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.AI.Retry.MaxAttempts
	policy.RateLimitBase = config.Duration(cfg.AI.Retry.RateLimitBase, llm.DefaultRateLimitBase)
	policy.TransientWait = config.Duration(cfg.AI.Retry.TransientWait, llm.DefaultTransientWait)

	return llm.NewClient(primary, secondary,
		llm.WithPolicy(policy),
		llm.WithTimeout(config.Duration(cfg.AI.Gemini.Timeout, llm.DefaultRequestTimeout)),
		llm.WithLogger(log),
	)
}

func newCritic(client llm.Completer, cfg *config.Config, log *slog.Logger) *critic.Critic {
	return critic.New(client, critic.Config{
		MaxAttempts: cfg.Pipeline.CriticAttempts,
		Temperature: cfg.Pipeline.CriticTemp,
		MaxTokens:   cfg.Pipeline.CriticMaxTokens,
	}, log)
}

func newNotionClient(cfg *config.Config) (*notion.Client, error) {
	if !cfg.Notion.Enabled() {
		return nil, nil
	}
	return notion.NewClient(cfg.Notion.Token, cfg.Notion.DatabaseID, "")
}

// components owns everything a pipeline run touches.
type components struct {
	store      store.Store
	knowledge  *knowledge.Base
	controller *pipeline.Controller
	analytics  *observability.PostHogClient
}

func (c *components) Close(log *slog.Logger) {
	if err := c.analytics.Close(); err != nil {
		log.Warn("Failed to flush analytics", "error", err)
	}
	if err := c.store.Close(); err != nil {
		log.Warn("Failed to close store", "error", err)
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, log *slog.Logger) (*components, error) {
	client, err := newLLMClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	analytics, err := observability.NewPostHogClient(observability.Config{
		Enabled: cfg.Analytics.PostHog.Enabled,
		APIKey:  cfg.Analytics.PostHog.APIKey,
		Host:    cfg.Analytics.PostHog.Host,
	}, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	kb := knowledge.NewBase(cfg.App.DataDir)
	renderer := newRenderer(cfg)

	b := pipeline.NewBuilder().
		WithConfig(pipeline.Config{
			MinScore:      cfg.Pipeline.MinScore,
			MaxCycles:     cfg.Pipeline.MaxCycles,
			FeedbackHints: cfg.Pipeline.FeedbackHints,
		}).
		WithGenerator(ideas.NewGenerator(client, st, ideas.Config{
			Temperature: cfg.Pipeline.GeneratorTemp,
			MaxTokens:   cfg.Pipeline.GeneratorMaxTokens,
		}, log)).
		WithCritic(newCritic(client, cfg, log)).
		WithStore(st).
		WithKnowledge(kb).
		WithReportRenderer(renderer).
		WithLandingRenderer(renderer).
		WithDashboardRenderer(renderer).
		WithTracker(analytics).
		WithLogger(log)

	notifier := messaging.NewMessagingClient(messaging.Config{
		TelegramBotToken:  cfg.Messaging.Telegram.BotToken,
		TelegramChatID:    cfg.Messaging.Telegram.ChatID,
		SlackWebhookURL:   cfg.Messaging.SlackWebhook,
		DiscordWebhookURL: cfg.Messaging.DiscordWebhook,
	}, log)
	if len(notifier.Platforms()) > 0 {
		b.WithNotifier(notifier)
	}

	workspace, err := newNotionClient(cfg)
	if err != nil {
		log.Warn("Notion sync disabled", "error", err)
	} else if workspace != nil {
		b.WithWorkspaceSync(workspace)
	}

	controller, err := b.Build()
	if err != nil {
		st.Close()
		return nil, err
	}

	return &components{store: st, knowledge: kb, controller: controller, analytics: analytics}, nil
}
