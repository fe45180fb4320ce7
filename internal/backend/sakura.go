package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/f559/auto-novel/internal/apperrors"
	"github.com/f559/auto-novel/internal/chunker"
	"github.com/f559/auto-novel/internal/glossary"
	"github.com/f559/auto-novel/internal/httpclient"
)

// Sakura handles smaller requests well; keep batches modest so single
// paragraphs never starve the context window.
const sakuraBatchBudget = 1500

type sakuraClient struct {
	endpoint    string
	useLlamaAPI bool
	glossary    glossary.Glossary
	limiter     *rate.Limiter
	logf        LogFunc
}

type llamaCompletionRequest struct {
	Prompt      string  `json:"prompt"`
	NPredict    int     `json:"n_predict"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type llamaCompletionResponse struct {
	Content string `json:"content"`
}

func newSakura(bc buildContext) (Translator, error) {
	desc := bc.desc.(Sakura)
	defaults, _ := DefaultsFor("sakura")
	if desc.Endpoint == "" {
		desc.Endpoint = defaults.Endpoint
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}
	return &sakuraClient{
		endpoint:    strings.TrimRight(desc.Endpoint, "/"),
		useLlamaAPI: desc.UseLlamaAPI,
		glossary:    bc.glossary,
		limiter:     rate.NewLimiter(rate.Limit(1), 1),
		logf:        bc.logf,
	}, nil
}

// sakuraPrompt is the fixed instruction the Sakura models are tuned for.
// The model translates line-per-line, so the batch is joined by newlines and
// responses are split the same way.
func (c *sakuraClient) sakuraPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString("将下面的日文文本翻译成中文：\n")
	if len(c.glossary) > 0 {
		b.WriteString("根据以下术语表（可以为空）：\n")
		for _, term := range c.glossary.Terms() {
			fmt.Fprintf(&b, "%s->%s\n", term, c.glossary[term])
		}
	}
	b.WriteString(strings.Join(texts, "\n"))
	return b.String()
}

func (c *sakuraClient) Translate(ctx context.Context, texts []string) ([]string, error) {
	nonBlank, restore := partitionBlank(texts)
	if len(nonBlank) == 0 {
		return texts, nil
	}
	var out []string
	for _, batch := range chunker.SplitBudget(nonBlank, sakuraBatchBudget) {
		translated, err := c.translateBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, translated...)
	}
	return restore(out), nil
}

func (c *sakuraClient) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	var result []string
	err := withRetry(ctx, defaultMaxAttempts, c.logf, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var content string
		var err error
		if c.useLlamaAPI {
			content, err = c.completeLlama(ctx, texts)
		} else {
			content, err = c.completeChat(ctx, texts)
		}
		if err != nil {
			return err
		}
		lines := splitCompletionLines(content)
		if len(lines) != len(texts) {
			return apperrors.Validation(
				fmt.Errorf("translation line count mismatch: expected %d, got %d", len(texts), len(lines)))
		}
		result = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *sakuraClient) completeLlama(ctx context.Context, texts []string) (string, error) {
	body, err := json.Marshal(llamaCompletionRequest{
		Prompt:      c.sakuraPrompt(texts),
		NPredict:    4096,
		Temperature: 0.1,
		TopP:        0.3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	respBody, err := c.post(ctx, c.endpoint+"/completion", body)
	if err != nil {
		return "", err
	}
	var decoded llamaCompletionResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", apperrors.New(
			apperrors.KindValidation,
			"Sakura response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	return decoded.Content, nil
}

func (c *sakuraClient) completeChat(ctx context.Context, texts []string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: "sukinishiro/sakura",
		Messages: []chatMessage{
			{Role: "user", Content: c.sakuraPrompt(texts)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	respBody, err := c.post(ctx, c.endpoint+"/v1/chat/completions", body)
	if err != nil {
		return "", err
	}
	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", apperrors.New(
			apperrors.KindValidation,
			"Sakura response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	if len(decoded.Choices) == 0 {
		return "", apperrors.Validation(fmt.Errorf("response contained no choices"))
	}
	return decoded.Choices[0].Message.Content, nil
}

func (c *sakuraClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, resp, err := httpclient.DoAndRead(httpclient.GetDefaultClient(), req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			"Sakura server is unreachable.",
			fmt.Errorf("request failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusServiceUnavailable {
			return nil, apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("Sakura server error (%d): please try again later.", resp.StatusCode),
				fmt.Errorf("sakura status=%s", resp.Status),
			)
		}
		return nil, apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("Sakura server rejected the request (%d).", resp.StatusCode),
			fmt.Errorf("sakura status=%s", resp.Status),
		)
	}
	return respBody, nil
}

func splitCompletionLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
