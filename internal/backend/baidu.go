package backend

import (
	"bufio"
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

const (
	baiduBaseURL     = "https://fanyi.baidu.com"
	baiduBatchBudget = 2000
)

type baiduClient struct {
	http     *http.Client
	glossary glossary.Glossary
	limiter  *rate.Limiter
	logf     LogFunc
}

type baiduTranslateRequest struct {
	Query     string `json:"query"`
	From      string `json:"from"`
	To        string `json:"to"`
	CorpusIDs []int  `json:"corpusIds"`
	Domain    string `json:"domain"`
}

type baiduEvent struct {
	Errno   int    `json:"errno"`
	Errmsg  string `json:"errmsg"`
	Data    baiduEventData
	RawData json.RawMessage `json:"data"`
}

type baiduEventData struct {
	Event string           `json:"event"`
	List  []baiduParagraph `json:"list"`
}

type baiduParagraph struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// newBaidu warms up a browser session against the translate page. Baidu
// rejects requests without the cookies handed out there, so a failed warmup
// fails the job before any chapter is touched.
func newBaidu(bc buildContext) (Translator, error) {
	client, err := httpclient.NewCookieClient(httpclient.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	c := &baiduClient{
		http:     client,
		glossary: bc.glossary,
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
		logf:     bc.logf,
	}
	if err := c.warmup(bc.ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *baiduClient) warmup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baiduBaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create warmup request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	_, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		return apperrors.New(
			apperrors.KindTransient,
			"Baidu translate is unreachable.",
			fmt.Errorf("warmup failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("Baidu translate warmup failed (%d).", resp.StatusCode),
			fmt.Errorf("baidu status=%s", resp.Status),
		)
	}
	return nil
}

func (c *baiduClient) Translate(ctx context.Context, texts []string) ([]string, error) {
	nonBlank, restore := partitionBlank(texts)
	if len(nonBlank) == 0 {
		return texts, nil
	}
	encoded := c.glossary.Encode(nonBlank)

	var translated []string
	for _, batch := range chunker.SplitBudget(encoded, baiduBatchBudget) {
		out, err := c.translateBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		translated = append(translated, out...)
	}
	return restore(c.glossary.Decode(translated)), nil
}

func (c *baiduClient) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	var result []string
	err := withRetry(ctx, defaultMaxAttempts, c.logf, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		out, err := c.call(ctx, texts)
		if err != nil {
			return err
		}
		if len(out) != len(texts) {
			return apperrors.Validation(
				fmt.Errorf("translation count mismatch: expected %d, got %d", len(texts), len(out)))
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// call posts the batch and drains the server-sent event stream, collecting
// translated paragraphs from Translating events.
func (c *baiduClient) call(ctx context.Context, texts []string) ([]string, error) {
	pair := language.PairFor("baidu")
	body, err := json.Marshal(baiduTranslateRequest{
		Query:  strings.Join(texts, "\n"),
		From:   pair.Source,
		To:     pair.Target,
		Domain: "common",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baiduBaseURL+"/ait/text/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)

	respBody, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			"Baidu request failed due to a temporary network error.",
			fmt.Errorf("request failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, apperrors.New(
				apperrors.KindRateLimit,
				"Baidu rate limit exceeded: please try again later.",
				fmt.Errorf("baidu status=%s", resp.Status),
			)
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("Baidu translate error (%d).", resp.StatusCode),
			fmt.Errorf("baidu status=%s", resp.Status),
		)
	}
	return parseBaiduStream(respBody)
}

func parseBaiduStream(body []byte) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), httpclient.MaxResponseBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var event baiduEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		if event.Errno != 0 {
			return nil, apperrors.New(
				apperrors.KindBadRequest,
				"Baidu translate rejected the request.",
				fmt.Errorf("baidu errno=%d errmsg=%s", event.Errno, event.Errmsg),
			)
		}
		if len(event.RawData) > 0 {
			if err := json.Unmarshal(event.RawData, &event.Data); err != nil {
				continue
			}
		}
		if event.Data.Event != "Translating" {
			continue
		}
		for _, p := range event.Data.List {
			out = append(out, p.Dst)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Validation(fmt.Errorf("failed to read event stream: %w", err))
	}
	if len(out) == 0 {
		return nil, apperrors.Validation(fmt.Errorf("event stream contained no translations"))
	}
	return out, nil
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
