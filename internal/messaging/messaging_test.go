package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

func publication() core.Publication {
	return core.Publication{
		Record: core.Record{
			Idea: core.Idea{
				Name:          "Shift <Swap>",
				Description:   "Swap shifts & save time",
				Monetization:  "subscription",
				Price:         "49",
				CriticScore:   core.IntPtr(81),
				ViralityScore: core.IntPtr(60),
			},
			Critique: &core.Critique{Summary: "Solid niche."},
		},
		Links: core.Links{Landing: "landing/shift-swap/index.html", Workspace: "https://notion.so/page"},
	}
}

func TestConvertToTelegramMessage(t *testing.T) {
	msg := ConvertToTelegramMessage(publication(), "42")
	assert.Equal(t, "42", msg.ChatID)
	assert.Equal(t, "HTML", msg.ParseMode)
	assert.Contains(t, msg.Text, "<b>Shift &lt;Swap&gt;</b>")
	assert.Contains(t, msg.Text, "Swap shifts &amp; save time")
	assert.Contains(t, msg.Text, "Viability 81/100")
	assert.Contains(t, msg.Text, "Execution n/a")
	assert.Contains(t, msg.Text, "Notion: https://notion.so/page")
}

func TestNotifySendsToConfiguredPlatforms(t *testing.T) {
	var paths []string
	var telegram TelegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/botTOKEN/sendMessage":
			_ = json.Unmarshal(body, &telegram)
			w.WriteHeader(http.StatusOK)
		case "/discord":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := NewMessagingClient(Config{
		TelegramBotToken:  "TOKEN",
		TelegramChatID:    "42",
		TelegramAPIBase:   srv.URL,
		SlackWebhookURL:   srv.URL + "/slack",
		DiscordWebhookURL: srv.URL + "/discord",
	}, logger.Discard())

	assert.Equal(t, []MessagePlatform{PlatformTelegram, PlatformSlack, PlatformDiscord}, c.Platforms())
	c.Notify(context.Background(), publication())

	assert.Equal(t, []string{"/botTOKEN/sendMessage", "/slack", "/discord"}, paths)
	assert.Equal(t, "42", telegram.ChatID)
}

func TestNotifySwallowsFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewMessagingClient(Config{TelegramBotToken: "T", TelegramChatID: "1", TelegramAPIBase: srv.URL, SlackWebhookURL: srv.URL}, logger.Discard())
	c.Notify(context.Background(), publication())
	assert.Equal(t, 2, calls)

	err := c.Send(context.Background(), PlatformSlack, publication())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNotifyKeepsCredentialsOutOfLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	c := NewMessagingClient(Config{
		TelegramBotToken: "SECRET123:abc",
		TelegramChatID:   "1",
		TelegramAPIBase:  base,
		SlackWebhookURL:  base + "/services/HOOKSECRET",
	}, log)
	c.Notify(context.Background(), publication())

	out := buf.String()
	assert.Contains(t, out, "Notification failed")
	assert.NotContains(t, out, "SECRET123")
	assert.NotContains(t, out, "HOOKSECRET")

	err := c.Send(context.Background(), PlatformTelegram, publication())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET123")
	assert.Contains(t, err.Error(), "failed to send telegram message")
}

func TestNoPlatformsConfigured(t *testing.T) {
	c := NewMessagingClient(Config{TelegramBotToken: "only-token"}, logger.Discard())
	assert.Empty(t, c.Platforms())
	assert.Error(t, c.Send(context.Background(), PlatformSlack, publication()))
	assert.Error(t, c.Send(context.Background(), MessagePlatform("pager"), publication()))
}

func TestConvertToDiscordMessage(t *testing.T) {
	msg := ConvertToDiscordMessage(publication())
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "https://notion.so/page", msg.Embeds[0].URL)
	assert.Len(t, msg.Embeds[0].Fields, 3)
}

func TestValidateWebhookURL(t *testing.T) {
	assert.NoError(t, ValidateWebhookURL(PlatformSlack, "https://hooks.slack.com/services/x"))
	assert.Error(t, ValidateWebhookURL(PlatformSlack, "https://example.com"))
	assert.NoError(t, ValidateWebhookURL(PlatformDiscord, "https://discord.com/api/webhooks/1"))
	assert.Error(t, ValidateWebhookURL(PlatformDiscord, ""))
}
