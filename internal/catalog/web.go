package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func webPath(provider, novelID, backendID string) string {
	return fmt.Sprintf("/api/novel/%s/%s/translate/%s",
		url.PathEscape(provider), url.PathEscape(novelID), url.PathEscape(backendID))
}

// GetWebTask fetches the translation task snapshot for a provider-crawled
// novel. Chapter states are a snapshot: they are not re-read mid-job.
func (c *Client) GetWebTask(ctx context.Context, provider, novelID, backendID string) (WebSnapshot, error) {
	var snapshot WebSnapshot
	err := c.do(ctx, http.MethodGet, webPath(provider, novelID, backendID), nil, &snapshot)
	return snapshot, err
}

// UpdateWebMetadata uploads translated title, introduction, and TOC entries.
func (c *Client) UpdateWebMetadata(ctx context.Context, provider, novelID, backendID string, update MetadataUpdate) error {
	return c.do(ctx, http.MethodPost, webPath(provider, novelID, backendID)+"/metadata", update, nil)
}

// GetWebChapter returns the chapter's source paragraphs. With sync set the
// catalog re-fetches the chapter from the provider first; an empty result
// means nothing changed and there is nothing to translate.
func (c *Client) GetWebChapter(ctx context.Context, provider, novelID, backendID, chapterID string, sync bool) ([]string, error) {
	path := fmt.Sprintf("%s/chapter/%s?sync=%t", webPath(provider, novelID, backendID), url.PathEscape(chapterID), sync)
	var response struct {
		Paragraphs []string `json:"paragraphs"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Paragraphs, nil
}

type webChapterUpdate struct {
	GlossaryID   *string  `json:"glossaryId"`
	ParagraphsZh []string `json:"paragraphsZh"`
}

// UpdateWebChapter uploads translated paragraphs for one chapter, tagged
// with the glossary the translation used.
func (c *Client) UpdateWebChapter(ctx context.Context, provider, novelID, backendID, chapterID string, glossaryID *string, paragraphs []string) (WebChapterCounts, error) {
	path := fmt.Sprintf("%s/chapter/%s", webPath(provider, novelID, backendID), url.PathEscape(chapterID))
	var counts WebChapterCounts
	err := c.do(ctx, http.MethodPut, path, webChapterUpdate{
		GlossaryID:   glossaryID,
		ParagraphsZh: paragraphs,
	}, &counts)
	return counts, err
}
