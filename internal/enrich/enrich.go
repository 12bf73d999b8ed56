// Package enrich asks an LLM for descriptive metadata about a single tab
// group. It is a thin boundary: one templated prompt, one HTTP call, no
// retries, no streaming. A malformed model response is preserved verbatim
// instead of failing the command.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/logger"
	"github.com/ohler55/ojg/oj"
)

const systemPrompt = `You are a bookmark analyst. Given a browser tab group, ` +
	`respond with a single JSON object with the fields: description (one ` +
	`sentence), category (one or two words), topics (array of strings), ` +
	`intent (what the user is likely trying to do), confidence (0 to 1). ` +
	`Respond with the JSON object only.`

var userPromptTmpl = template.Must(template.New("user").Parse(
	`Tab group: {{.GroupName}}

Tabs:
{{range .Tabs}}- {{.Title}} ({{.URL}})
{{end}}{{if .Excerpts}}
Page excerpts:
{{range .Excerpts}}--- {{.URL}}
{{.Text}}
{{end}}{{end}}`))

// PageExcerpt is a short plain-text sample of one tab's page content,
// included only in Tier 2 analysis.
type PageExcerpt struct {
	URL  string
	Text string
}

type promptData struct {
	GroupName string
	Tabs      []api.Tab
	Excerpts  []PageExcerpt
}

// Client calls a chat-completions style endpoint.
type Client struct {
	baseURL string
	model   string
	key     string
	httpc   *http.Client
	log     logger.Logger
}

func NewClient(baseURL, model, key string, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		key:     key,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// Describe analyzes one tab group. The returned map carries the model's
// description/category/topics/intent/confidence fields when the response
// contained a JSON object, or the whole response under "raw" when it did
// not.
func (c *Client) Describe(ctx context.Context, group api.TabGroup, excerpts []PageExcerpt) (map[string]any, error) {
	var user bytes.Buffer
	if err := userPromptTmpl.Execute(&user, promptData{
		GroupName: group.Name,
		Tabs:      group.Tabs,
		Excerpts:  excerpts,
	}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}
	c.log.Debug("sending enrichment request",
		logger.String("group", group.Name),
		logger.Int("tabs", len(group.Tabs)),
		logger.Int("excerpts", len(excerpts)))

	content, err := c.complete(ctx, user.String())
	if err != nil {
		return nil, err
	}
	return ExtractObject(content), nil
}

// complete performs the single chat-completion request.
func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	reqBody, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // safe to ignore

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("llm returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm response contained no choices")
	}
	return payload.Choices[0].Message.Content, nil
}

// ExtractObject pulls the first JSON object out of free-form model output.
// Models often wrap the object in prose or code fences; anything before the
// first '{' and after the last '}' is discarded. Content with no parseable
// object comes back as {"raw": content}.
func ExtractObject(content string) map[string]any {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		parsed, err := oj.ParseString(content[start : end+1])
		if err == nil {
			if obj, ok := parsed.(map[string]any); ok {
				return obj
			}
		}
	}
	return map[string]any{"raw": content}
}
