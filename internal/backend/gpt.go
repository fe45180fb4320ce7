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
	"github.com/f559/auto-novel/internal/language"
)

// Request budget per chat call, in graphemes of source text. Large chapters
// are split by the chunker and re-joined in order.
const gptBatchBudget = 3500

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatErrorEnvelope struct {
	Error chatErrorDetails `json:"error"`
}

type chatErrorDetails struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (e chatErrorDetails) codeString() string {
	if e.Code == nil {
		return ""
	}
	return fmt.Sprint(e.Code)
}

type gptClient struct {
	mode       GPTMode
	url        string
	credential string
	model      string
	glossary   glossary.Glossary
	limiter    *rate.Limiter
	logf       LogFunc
}

func newGPT(bc buildContext) (Translator, error) {
	desc := bc.desc.(GPT)
	defaults, _ := DefaultsFor("gpt")
	if desc.Endpoint == "" {
		desc.Endpoint = defaults.Endpoint
	}
	if desc.Model == "" {
		desc.Model = defaults.Model
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(desc.Endpoint, "/")
	url := endpoint + "/v1/chat/completions"
	if desc.Mode == ModeWeb {
		// Web mode goes through a conversation proxy that accepts the
		// same chat wire shape with a web access token.
		url = endpoint + "/api/conversation"
	}

	c := &gptClient{
		mode:       desc.Mode,
		url:        url,
		credential: desc.Credential,
		model:      desc.Model,
		glossary:   bc.glossary,
		limiter:    rate.NewLimiter(rate.Limit(0.5), 1),
		logf:       bc.logf,
	}
	return c, nil
}

func (c *gptClient) systemPrompt() string {
	prompt := fmt.Sprintf(
		"You are a professional %s to %s translator of web novels.\n"+
			"Translate each numbered %s paragraph into %s.\n"+
			"Keep the register and tone of the original.\n",
		language.SourceName, language.TargetName,
		language.SourceName, language.TargetName)
	if block := c.glossary.PromptBlock(); block != "" {
		prompt += "\n" + block
	}
	return prompt
}

func (c *gptClient) Translate(ctx context.Context, texts []string) ([]string, error) {
	var out []string
	for _, batch := range chunker.SplitBudget(texts, gptBatchBudget) {
		translated, err := c.translateBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, translated...)
	}
	return out, nil
}

func (c *gptClient) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	var result []string
	err := withRetry(ctx, defaultMaxAttempts, c.logf, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		content, err := c.complete(ctx, texts)
		if err != nil {
			return err
		}
		result, err = parseJSONArray(content, len(texts))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *gptClient) complete(ctx context.Context, texts []string) (string, error) {
	user := fmt.Sprintf(
		"Translate the following %d paragraphs. Return ONLY a JSON array with exactly %d translated strings, in the same order.\n\n%s",
		len(texts), len(texts), numberedList(texts))

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt()},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.credential)

	respBody, resp, err := httpclient.DoAndRead(httpclient.GetDefaultClient(), req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.New(
			apperrors.KindTransient,
			"GPT request failed due to a temporary network error.",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyGPTError(resp.StatusCode, resp.Status, parseChatError(respBody))
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", apperrors.New(
			apperrors.KindValidation,
			"GPT response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	if len(decoded.Choices) == 0 {
		return "", apperrors.Validation(fmt.Errorf("response contained no choices"))
	}
	return decoded.Choices[0].Message.Content, nil
}

func parseChatError(body []byte) chatErrorDetails {
	var envelope chatErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return chatErrorDetails{}
	}
	return envelope.Error
}

func classifyGPTError(statusCode int, status string, details chatErrorDetails) error {
	code := details.codeString()
	cause := fmt.Errorf("gpt status=%s type=%s code=%s message=%s", status, details.Type, code, details.Message)

	// A dead credential or exhausted quota will fail every remaining
	// chapter the same way, so the whole job aborts.
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return apperrors.Abort(apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("GPT authentication failed (%d): please verify your key or access token.", statusCode),
			cause,
		))
	}
	if isQuotaExhausted(details) {
		return apperrors.Abort(apperrors.New(
			apperrors.KindAuth,
			"GPT account quota is exhausted.",
			cause,
		))
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			"GPT rate limit exceeded (429): please try again later.",
			cause,
		)
	case statusCode >= 500:
		return apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("GPT server error (%d): please try again later.", statusCode),
			cause,
		)
	default:
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("GPT API error (%d): %s", statusCode, status),
			cause,
		)
	}
}

func isQuotaExhausted(details chatErrorDetails) bool {
	needle := strings.ToLower(details.codeString() + " " + details.Type + " " + details.Message)
	return strings.Contains(needle, "insufficient_quota") ||
		strings.Contains(needle, "exceeded your current quota")
}
