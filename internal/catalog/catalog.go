// Package catalog is the client for the novel catalog service: it serves the
// translation task snapshots and receives translated metadata and chapters.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/f559/auto-novel/internal/apperrors"
	"github.com/f559/auto-novel/internal/httpclient"
)

// ChapterState is the catalog's translation state for one chapter, scoped to
// the backend the task was fetched for.
type ChapterState string

const (
	StateUntranslated ChapterState = "untranslated"
	StateTranslated   ChapterState = "translated"
	StateExpired      ChapterState = "expired"
)

// ChapterRecord is one entry of a web task's chapter list, in reading order.
type ChapterRecord struct {
	ID    string       `json:"id"`
	State ChapterState `json:"state"`
}

// WebSnapshot is the task for a provider-crawled novel.
type WebSnapshot struct {
	Title        *string           `json:"title"`
	Introduction *string           `json:"introduction"`
	Toc          []string          `json:"toc"`
	GlossaryID   *string           `json:"glossaryId"`
	Glossary     map[string]string `json:"glossary"`
	Chapters     []ChapterRecord   `json:"chapters"`
}

// VolumeSnapshot is the task for a library or local volume. Volumes carry no
// translatable metadata and the catalog tracks only which chapters still
// need work.
type VolumeSnapshot struct {
	GlossaryID           string            `json:"glossaryId"`
	Glossary             map[string]string `json:"glossary"`
	UntranslatedChapters []string          `json:"untranslatedChapterIds"`
	ExpiredChapters      []string          `json:"expiredChapterIds"`
}

// MetadataUpdate carries translated metadata back to the catalog. Toc maps
// each original entry to its translation.
type MetadataUpdate struct {
	Title        *string           `json:"title,omitempty"`
	Introduction *string           `json:"introduction,omitempty"`
	Toc          map[string]string `json:"toc"`
}

// WebChapterCounts is the paragraph count pair a web chapter upload returns.
type WebChapterCounts struct {
	Jp int `json:"jp"`
	Zh int `json:"zh"`
}

// Client talks to one catalog instance. A zero token means anonymous access;
// the catalog decides what that may do.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpclient.GetDefaultClient(),
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	respBody, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.New(
			apperrors.KindTransient,
			"Catalog request failed due to a temporary network error.",
			fmt.Errorf("request failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		return classifyCatalogError(resp.StatusCode, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.New(
			apperrors.KindValidation,
			"Catalog response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	return nil
}

func classifyCatalogError(statusCode int, status string) error {
	cause := fmt.Errorf("catalog status=%s", status)
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("Catalog rejected the credentials (%d): sign in again.", statusCode),
			cause,
		)
	case statusCode == http.StatusNotFound:
		return apperrors.New(
			apperrors.KindBadRequest,
			"Catalog resource not found (404).",
			cause,
		)
	case statusCode == http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			"Catalog rate limit exceeded (429): please try again later.",
			cause,
		)
	case statusCode >= 500:
		return apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("Catalog server error (%d): please try again later.", statusCode),
			cause,
		)
	default:
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("Catalog error (%d): %s", statusCode, status),
			cause,
		)
	}
}
