package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/generate"
)

// Generate implements generate.Generator using chat/completions in JSON mode.
func (c *Client) Generate(ctx context.Context, kind constants.ReportKind, docs []generate.DocumentSummary) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	tmpl, err := c.templates.For(kind)
	if err != nil {
		return "", err
	}
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: openai api key is not set", generate.ErrGeneration)
	}

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"kind", kind,
		"documents", len(docs),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": generate.BuildSystemPrompt(kind, tmpl)},
			{"role": "system", "content": generate.SchemaPrompt(tmpl)},
			{"role": "user", "content": generate.BuildUserPrompt(kind, docs) + "\n\nReturn ONLY JSON that matches the provided schema."},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.generate.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: %w", generate.ErrGeneration, httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: decode openai response: %w", generate.ErrGeneration, err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.generate.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: no choices in openai response", generate.ErrGeneration)
	}

	sections, err := generate.DecodeSections(cc.Choices[0].Message.Content, tmpl, c.log.With("req_id", rid))
	if err != nil {
		return "", err
	}

	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"sections", len(sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return generate.Render(kind, sections), nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}
