package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ideaforge/internal/core"
)

// MessagePlatform represents different messaging platforms
type MessagePlatform string

const (
	PlatformTelegram MessagePlatform = "telegram"
	PlatformSlack    MessagePlatform = "slack"
	PlatformDiscord  MessagePlatform = "discord"
)

// DefaultTelegramAPI is the Bot API base URL.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramMessage is a Bot API sendMessage request
type TelegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SlackMessage represents a Slack message structure
type SlackMessage struct {
	Text   string       `json:"text,omitempty"`
	Blocks []SlackBlock `json:"blocks,omitempty"`
}

// SlackBlock represents a Slack block kit element
type SlackBlock struct {
	Type string     `json:"type"`
	Text *SlackText `json:"text,omitempty"`
}

// SlackText represents text in Slack blocks
type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DiscordMessage represents a Discord message structure
type DiscordMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

// DiscordEmbed represents a Discord embed
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// DiscordEmbedField represents fields in Discord embeds
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Config lists the configured destinations. Empty values disable a platform.
type Config struct {
	TelegramBotToken  string
	TelegramChatID    string
	TelegramAPIBase   string
	SlackWebhookURL   string
	DiscordWebhookURL string
}

// MessagingClient handles sending messages to different platforms
type MessagingClient struct {
	config     Config
	HTTPClient *http.Client
	log        *slog.Logger
}

// NewMessagingClient creates a new messaging client
func NewMessagingClient(config Config, log *slog.Logger) *MessagingClient {
	if config.TelegramAPIBase == "" {
		config.TelegramAPIBase = DefaultTelegramAPI
	}
	if log == nil {
		log = slog.Default()
	}
	return &MessagingClient{
		config:     config,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Platforms returns the configured platforms.
func (c *MessagingClient) Platforms() []MessagePlatform {
	var out []MessagePlatform
	if c.config.TelegramBotToken != "" && c.config.TelegramChatID != "" {
		out = append(out, PlatformTelegram)
	}
	if c.config.SlackWebhookURL != "" {
		out = append(out, PlatformSlack)
	}
	if c.config.DiscordWebhookURL != "" {
		out = append(out, PlatformDiscord)
	}
	return out
}

// Notify sends the publication to every configured platform. Delivery
// failures are logged, never returned.
func (c *MessagingClient) Notify(ctx context.Context, pub core.Publication) {
	for _, platform := range c.Platforms() {
		if err := c.Send(ctx, platform, pub); err != nil {
			c.log.Warn("Notification failed", "platform", string(platform), "idea", pub.Record.Idea.Name, "error", err.Error())
			continue
		}
		c.log.Info("Notification sent", "platform", string(platform), "idea", pub.Record.Idea.Name)
	}
}

// Send delivers the publication to one platform.
func (c *MessagingClient) Send(ctx context.Context, platform MessagePlatform, pub core.Publication) error {
	switch platform {
	case PlatformTelegram:
		return c.SendTelegramMessage(ctx, ConvertToTelegramMessage(pub, c.config.TelegramChatID))
	case PlatformSlack:
		return c.SendSlackMessage(ctx, ConvertToSlackMessage(pub))
	case PlatformDiscord:
		return c.SendDiscordMessage(ctx, ConvertToDiscordMessage(pub))
	default:
		return fmt.Errorf("unsupported platform: %s", platform)
	}
}

func score(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d/100", *v)
}

// ConvertToTelegramMessage formats a publication as Telegram HTML.
func ConvertToTelegramMessage(pub core.Publication, chatID string) *TelegramMessage {
	idea := pub.Record.Idea
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💡 <b>%s</b>\n", html.EscapeString(idea.Name)))
	b.WriteString(html.EscapeString(idea.Description) + "\n\n")
	b.WriteString(fmt.Sprintf("📊 Viability %s · Virality %s · Execution %s\n",
		score(idea.CriticScore), score(idea.ViralityScore), score(idea.GeneratorScore)))
	if idea.Monetization != "" {
		b.WriteString(fmt.Sprintf("💰 %s", html.EscapeString(idea.Monetization)))
		if idea.Price != "" {
			b.WriteString(" · " + html.EscapeString(idea.Price.String()))
		}
		b.WriteString("\n")
	}
	if c := pub.Record.Critique; c != nil && c.Summary != "" {
		b.WriteString("\n<i>" + html.EscapeString(c.Summary) + "</i>\n")
	}
	for _, l := range linkList(pub.Links) {
		b.WriteString(fmt.Sprintf("\n🔗 %s: %s", l[0], html.EscapeString(l[1])))
	}
	return &TelegramMessage{ChatID: chatID, Text: b.String(), ParseMode: "HTML", DisableWebPagePreview: true}
}

// ConvertToSlackMessage formats a publication as Slack blocks.
func ConvertToSlackMessage(pub core.Publication) *SlackMessage {
	idea := pub.Record.Idea
	body := fmt.Sprintf("*%s*\n%s\nViability %s · Virality %s · Execution %s",
		idea.Name, idea.Description, score(idea.CriticScore), score(idea.ViralityScore), score(idea.GeneratorScore))
	for _, l := range linkList(pub.Links) {
		body += fmt.Sprintf("\n%s: %s", l[0], l[1])
	}
	return &SlackMessage{
		Text: "New idea published: " + idea.Name,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackText{Type: "mrkdwn", Text: body}},
		},
	}
}

// ConvertToDiscordMessage formats a publication as a Discord embed.
func ConvertToDiscordMessage(pub core.Publication) *DiscordMessage {
	idea := pub.Record.Idea
	embed := DiscordEmbed{
		Title:       idea.Name,
		Description: idea.Description,
		Color:       0x2563eb,
		Fields: []DiscordEmbedField{
			{Name: "Viability", Value: score(idea.CriticScore), Inline: true},
			{Name: "Virality", Value: score(idea.ViralityScore), Inline: true},
			{Name: "Execution", Value: score(idea.GeneratorScore), Inline: true},
		},
	}
	if pub.Links.Workspace != "" {
		embed.URL = pub.Links.Workspace
	}
	return &DiscordMessage{Content: "New idea published", Embeds: []DiscordEmbed{embed}}
}

func linkList(l core.Links) [][2]string {
	var out [][2]string
	for _, pair := range [][2]string{
		{"Landing", l.Landing}, {"Report", l.Report}, {"Dashboard", l.Dashboard}, {"Notion", l.Workspace},
	} {
		if pair[1] != "" {
			out = append(out, pair)
		}
	}
	return out
}

// SendTelegramMessage posts to the Bot API sendMessage method
func (c *MessagingClient) SendTelegramMessage(ctx context.Context, message *TelegramMessage) error {
	if c.config.TelegramBotToken == "" {
		return fmt.Errorf("telegram bot token not configured")
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(c.config.TelegramAPIBase, "/"), c.config.TelegramBotToken)
	return c.post(ctx, "telegram", endpoint, message, http.StatusOK)
}

// SendSlackMessage sends a message to Slack webhook
func (c *MessagingClient) SendSlackMessage(ctx context.Context, message *SlackMessage) error {
	if c.config.SlackWebhookURL == "" {
		return fmt.Errorf("slack webhook URL not configured")
	}
	return c.post(ctx, "slack", c.config.SlackWebhookURL, message, http.StatusOK)
}

// SendDiscordMessage sends a message to Discord webhook
func (c *MessagingClient) SendDiscordMessage(ctx context.Context, message *DiscordMessage) error {
	if c.config.DiscordWebhookURL == "" {
		return fmt.Errorf("discord webhook URL not configured")
	}
	return c.post(ctx, "discord", c.config.DiscordWebhookURL, message, http.StatusOK, http.StatusNoContent)
}

func (c *MessagingClient) post(ctx context.Context, platform, endpoint string, payload any, okStatus ...int) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", platform, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", platform, redactURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s message: %w", platform, redactURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	for _, s := range okStatus {
		if resp.StatusCode == s {
			return nil
		}
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s returned status %d: %s", platform, resp.StatusCode, string(body))
}

// redactURL strips the request URL from transport errors. Bot tokens and
// webhook URLs are credentials.
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

// ValidateWebhookURL validates if a webhook URL is properly formatted
func ValidateWebhookURL(platform MessagePlatform, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s webhook URL cannot be empty", platform)
	}

	switch platform {
	case PlatformSlack:
		if !strings.Contains(raw, "hooks.slack.com") {
			return fmt.Errorf("invalid Slack webhook URL format")
		}
	case PlatformDiscord:
		if !strings.Contains(raw, "discord.com/api/webhooks") {
			return fmt.Errorf("invalid Discord webhook URL format")
		}
	default:
		return fmt.Errorf("unknown platform: %s", platform)
	}

	return nil
}
