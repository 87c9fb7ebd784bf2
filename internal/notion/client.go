// Package notion mirrors ideas to a Notion database and picks up ideas
// submitted there for review.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"ideaforge/internal/core"
)

// API constants.
const (
	DefaultBaseURL = "https://api.notion.com"
	APIVersion     = "2022-06-28"
)

// Status values of the database Status select.
const (
	StatusPending   = "Pending"
	StatusDone      = "Done"
	StatusPublished = "Published"
)

// maxText is Notion's rich text content limit.
const maxText = 2000

// Client talks to the Notion REST API.
type Client struct {
	token      string
	databaseID string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for one database.
func NewClient(token, databaseID, baseURL string) (*Client, error) {
	if token == "" || databaseID == "" {
		return nil, fmt.Errorf("notion token and database ID are required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:      token,
		databaseID: databaseID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// APIError is a non-2xx Notion response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion http %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode notion request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read notion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       gjson.GetBytes(data, "code").String(),
			Message:    gjson.GetBytes(data, "message").String(),
		}
	}
	return data, nil
}

type object = map[string]any

func title(s string) object {
	return object{"title": []object{{"text": object{"content": truncate(s)}}}}
}

func richText(s string) object {
	return object{"rich_text": []object{{"text": object{"content": truncate(s)}}}}
}

func selectProp(s string) object {
	return object{"select": object{"name": strings.ReplaceAll(truncate(s), ",", " ")}}
}

func number(v *int) object {
	if v == nil {
		return object{"number": nil}
	}
	return object{"number": *v}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxText {
		return string(r[:maxText])
	}
	return s
}

// IdeaProperties maps a record onto database properties.
func IdeaProperties(rec core.Record, status string) object {
	idea := rec.Idea
	props := object{
		"Name":         title(idea.Name),
		"Description":  richText(idea.Description),
		"Problem":      richText(idea.Problem),
		"Solution":     richText(idea.Solution),
		"Monetization": richText(idea.Monetization),
		"Price":        richText(idea.Price.String()),
		"Fingerprint":  richText(idea.Fingerprint),
		"Score":        number(idea.CriticScore),
		"Virality":     number(idea.ViralityScore),
		"Execution":    number(idea.GeneratorScore),
		"Status":       selectProp(status),
	}
	if idea.Vertical != "" {
		props["Vertical"] = selectProp(idea.Vertical)
	}
	if idea.Type != "" {
		props["Type"] = selectProp(idea.Type)
	}
	if idea.Effort != "" {
		props["Effort"] = selectProp(idea.Effort)
	}
	if c := rec.Critique; c != nil {
		props["Summary"] = richText(c.Summary)
	}
	return props
}

// SyncIdea creates a page for a published record and returns its URL.
func (c *Client) SyncIdea(ctx context.Context, rec core.Record) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/v1/pages", object{
		"parent":     object{"database_id": c.databaseID},
		"properties": IdeaProperties(rec, StatusPublished),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create notion page: %w", err)
	}
	url := gjson.GetBytes(data, "url").String()
	if url == "" {
		url = gjson.GetBytes(data, "id").String()
	}
	return url, nil
}

// Page is a database row awaiting review.
type Page struct {
	ID   string
	URL  string
	Idea core.Idea
}

// QueryPending lists pages whose Status is Pending, following pagination.
func (c *Client) QueryPending(ctx context.Context) ([]Page, error) {
	var pages []Page
	cursor := ""
	for {
		body := object{
			"filter":    object{"property": "Status", "select": object{"equals": StatusPending}},
			"page_size": 50,
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		data, err := c.do(ctx, http.MethodPost, "/v1/databases/"+c.databaseID+"/query", body)
		if err != nil {
			return nil, fmt.Errorf("failed to query notion database: %w", err)
		}
		for _, r := range gjson.GetBytes(data, "results").Array() {
			pages = append(pages, ParsePage(r))
		}
		if !gjson.GetBytes(data, "has_more").Bool() {
			return pages, nil
		}
		cursor = gjson.GetBytes(data, "next_cursor").String()
		if cursor == "" {
			return pages, nil
		}
	}
}

// ParsePage extracts an idea from a page object.
func ParsePage(r gjson.Result) Page {
	props := r.Get("properties")
	text := func(name string) string {
		p := props.Get(name)
		var parts []string
		for _, key := range []string{"title", "rich_text"} {
			for _, t := range p.Get(key).Array() {
				parts = append(parts, t.Get("plain_text").String())
			}
		}
		if s := p.Get("select.name").String(); s != "" && len(parts) == 0 {
			return s
		}
		return strings.TrimSpace(strings.Join(parts, ""))
	}
	return Page{
		ID:  r.Get("id").String(),
		URL: r.Get("url").String(),
		Idea: core.Idea{
			ID:           r.Get("id").String(),
			Name:         text("Name"),
			Description:  text("Description"),
			Problem:      text("Problem"),
			Solution:     text("Solution"),
			Vertical:     text("Vertical"),
			Type:         text("Type"),
			Monetization: text("Monetization"),
			Price:        core.Price(text("Price")),
			Effort:       text("Effort"),
		},
	}
}

// MarkDone writes the review back to the page.
func (c *Client) MarkDone(ctx context.Context, pageID string, rec core.Record, links core.Links) error {
	props := IdeaProperties(rec, StatusDone)
	delete(props, "Name")
	if links.Landing != "" {
		props["Landing"] = richText(links.Landing)
	}
	if links.Report != "" {
		props["Report"] = richText(links.Report)
	}
	if _, err := c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, object{"properties": props}); err != nil {
		return fmt.Errorf("failed to update notion page %s: %w", pageID, err)
	}
	return nil
}
