package api

import (
	"context"
	"fmt"

	"github.com/shelfd/shelf/internal/domain"
)

// ListBookmarks fetches one page of the bookmark view described by q.
func (c *Client) ListBookmarks(ctx context.Context, q domain.QueryIdentity, req domain.PageRequest) (domain.Page, error) {
	var payloads []bookmarkPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(q, req)).
		SetResult(&payloads).
		Get("/api/v1/bookmarks")
	if err != nil {
		return domain.Page{}, fmt.Errorf("list bookmarks: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.Page{}, parseError(resp)
	}

	items := make([]domain.Entity, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, mapBookmark(p))
	}
	return page(items, req, resp), nil
}

// GetBookmark fetches the detail payload for one bookmark.
func (c *Client) GetBookmark(ctx context.Context, id string) (domain.Bookmark, error) {
	var payload bookmarkPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/api/v1/bookmarks/" + id)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("get bookmark %s: %w", id, err)
	}
	if !resp.IsSuccess() {
		return domain.Bookmark{}, parseError(resp)
	}
	return mapBookmark(payload), nil
}

// CreateBookmark persists a new bookmark and returns the server entity with
// its assigned id.
func (c *Client) CreateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	if b.URL == "" {
		return domain.Bookmark{}, &ValidationError{Field: "url", Reason: "is required"}
	}

	var payload bookmarkPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(toBookmarkPayload(b)).
		SetResult(&payload).
		Post("/api/v1/bookmarks")
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.Bookmark{}, parseError(resp)
	}
	return mapBookmark(payload), nil
}

// UpdateBookmark replaces a bookmark server-side and returns the stored
// entity.
func (c *Client) UpdateBookmark(ctx context.Context, b domain.Bookmark) (domain.Bookmark, error) {
	if b.ID == "" || domain.IsProvisionalID(b.ID) {
		return domain.Bookmark{}, &ValidationError{Field: "id", Reason: "must be a server id"}
	}

	var payload bookmarkPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(toBookmarkPayload(b)).
		SetResult(&payload).
		Put("/api/v1/bookmarks/" + b.ID)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("update bookmark %s: %w", b.ID, err)
	}
	if !resp.IsSuccess() {
		return domain.Bookmark{}, parseError(resp)
	}
	return mapBookmark(payload), nil
}

// DeleteBookmark removes a bookmark server-side.
func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	if id == "" || domain.IsProvisionalID(id) {
		return &ValidationError{Field: "id", Reason: "must be a server id"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/v1/bookmarks/" + id)
	if err != nil {
		return fmt.Errorf("delete bookmark %s: %w", id, err)
	}
	if !resp.IsSuccess() {
		return parseError(resp)
	}
	return nil
}

// AddBookmarkTag attaches one tag to a bookmark.
func (c *Client) AddBookmarkTag(ctx context.Context, id, tag string) error {
	if tag == "" {
		return &ValidationError{Field: "tag", Reason: "is required"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"tag": tag}).
		Post("/api/v1/bookmarks/" + id + "/tags")
	if err != nil {
		return fmt.Errorf("add tag %q to bookmark %s: %w", tag, id, err)
	}
	if !resp.IsSuccess() {
		return parseError(resp)
	}
	return nil
}

// RemoveBookmarkTag detaches one tag from a bookmark.
func (c *Client) RemoveBookmarkTag(ctx context.Context, id, tag string) error {
	if tag == "" {
		return &ValidationError{Field: "tag", Reason: "is required"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/v1/bookmarks/" + id + "/tags/" + tag)
	if err != nil {
		return fmt.Errorf("remove tag %q from bookmark %s: %w", tag, id, err)
	}
	if !resp.IsSuccess() {
		return parseError(resp)
	}
	return nil
}
