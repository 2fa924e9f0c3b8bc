package api

import (
	"context"
	"fmt"

	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/logger"
)

// ListActivities fetches one page of the activity feed. Entries with an
// unknown type are dropped with a warning rather than failing the page.
func (c *Client) ListActivities(ctx context.Context, q domain.QueryIdentity, req domain.PageRequest) (domain.Page, error) {
	var payloads []activityPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(q, req)).
		SetResult(&payloads).
		Get("/api/v1/activities")
	if err != nil {
		return domain.Page{}, fmt.Errorf("list activities: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.Page{}, parseError(resp)
	}

	items := make([]domain.Entity, 0, len(payloads))
	for _, p := range payloads {
		a := mapActivity(p)
		if !domain.ValidActivityType(a.Type) {
			c.logger.Warn("dropping activity with unknown type",
				logger.String("id", a.ID),
				logger.String("type", string(a.Type)))
			continue
		}
		items = append(items, a)
	}
	return page(items, req, resp), nil
}

// CreateActivity persists a feed entry (note, highlight) and returns the
// server entity.
func (c *Client) CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	if !domain.ValidActivityType(a.Type) {
		return domain.Activity{}, &ValidationError{Field: "type", Reason: "is not a known activity type"}
	}

	var payload activityPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(toActivityPayload(a)).
		SetResult(&payload).
		Post("/api/v1/activities")
	if err != nil {
		return domain.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.Activity{}, parseError(resp)
	}
	return mapActivity(payload), nil
}

// ListCollections fetches one page of the user's collections.
func (c *Client) ListCollections(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	var payloads []collectionPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(domain.QueryIdentity{}, req)).
		SetResult(&payloads).
		Get("/api/v1/collections")
	if err != nil {
		return domain.Page{}, fmt.Errorf("list collections: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.Page{}, parseError(resp)
	}

	items := make([]domain.Entity, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, mapCollection(p))
	}
	return page(items, req, resp), nil
}

// ListTags fetches one page of the user's tags with usage counts.
func (c *Client) ListTags(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	var payloads []tagPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(queryParams(domain.QueryIdentity{}, req)).
		SetResult(&payloads).
		Get("/api/v1/tags")
	if err != nil {
		return domain.Page{}, fmt.Errorf("list tags: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.Page{}, parseError(resp)
	}

	items := make([]domain.Entity, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, mapTag(p))
	}
	return page(items, req, resp), nil
}
