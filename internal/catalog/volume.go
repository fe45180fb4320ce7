package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Library and local volumes share one wire shape; only the path prefix and
// ownership model differ.

func libraryPath(novelID, volumeID, backendID string) string {
	return fmt.Sprintf("/api/library/%s/translate/%s/%s",
		url.PathEscape(novelID), url.PathEscape(backendID), url.PathEscape(volumeID))
}

func localPath(volumeID, backendID string) string {
	return fmt.Sprintf("/api/personal/translate/%s/%s",
		url.PathEscape(backendID), url.PathEscape(volumeID))
}

type volumeChapterUpdate struct {
	GlossaryID string   `json:"glossaryId"`
	Paragraphs []string `json:"paragraphs"`
}

type volumeChapterResponse struct {
	Paragraphs []string `json:"paragraphs"`
}

type volumeUpdateResponse struct {
	Translated int `json:"translated"`
}

// GetLibraryTask fetches the task snapshot for one library volume.
func (c *Client) GetLibraryTask(ctx context.Context, novelID, volumeID, backendID string) (VolumeSnapshot, error) {
	var snapshot VolumeSnapshot
	err := c.do(ctx, http.MethodGet, libraryPath(novelID, volumeID, backendID), nil, &snapshot)
	return snapshot, err
}

// GetLibraryChapter returns one chapter's source paragraphs.
func (c *Client) GetLibraryChapter(ctx context.Context, novelID, volumeID, backendID, chapterID string) ([]string, error) {
	path := libraryPath(novelID, volumeID, backendID) + "/chapter/" + url.PathEscape(chapterID)
	var response volumeChapterResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Paragraphs, nil
}

// UpdateLibraryChapter uploads translated paragraphs and returns the
// volume's translated chapter count.
func (c *Client) UpdateLibraryChapter(ctx context.Context, novelID, volumeID, backendID, chapterID, glossaryID string, paragraphs []string) (int, error) {
	path := libraryPath(novelID, volumeID, backendID) + "/chapter/" + url.PathEscape(chapterID)
	var response volumeUpdateResponse
	err := c.do(ctx, http.MethodPut, path, volumeChapterUpdate{
		GlossaryID: glossaryID,
		Paragraphs: paragraphs,
	}, &response)
	return response.Translated, err
}

// GetLocalTask fetches the task snapshot for one user-uploaded volume.
func (c *Client) GetLocalTask(ctx context.Context, volumeID, backendID string) (VolumeSnapshot, error) {
	var snapshot VolumeSnapshot
	err := c.do(ctx, http.MethodGet, localPath(volumeID, backendID), nil, &snapshot)
	return snapshot, err
}

// GetLocalChapter returns one chapter's source paragraphs.
func (c *Client) GetLocalChapter(ctx context.Context, volumeID, backendID, chapterID string) ([]string, error) {
	path := localPath(volumeID, backendID) + "/chapter/" + url.PathEscape(chapterID)
	var response volumeChapterResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Paragraphs, nil
}

// UpdateLocalChapter uploads translated paragraphs and returns the volume's
// translated chapter count.
func (c *Client) UpdateLocalChapter(ctx context.Context, volumeID, backendID, chapterID, glossaryID string, paragraphs []string) (int, error) {
	path := localPath(volumeID, backendID) + "/chapter/" + url.PathEscape(chapterID)
	var response volumeUpdateResponse
	err := c.do(ctx, http.MethodPut, path, volumeChapterUpdate{
		GlossaryID: glossaryID,
		Paragraphs: paragraphs,
	}, &response)
	return response.Translated, err
}
