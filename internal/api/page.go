package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shelfd/shelf/internal/domain"
)

// FetchPage retrieves one page of the view described by q. It is the single
// entry point the pagination controller uses, dispatching on entity kind.
func (c *Client) FetchPage(ctx context.Context, q domain.QueryIdentity, req domain.PageRequest) (domain.Page, error) {
	switch q.Kind {
	case domain.KindBookmark:
		return c.ListBookmarks(ctx, q, req)
	case domain.KindActivity:
		return c.ListActivities(ctx, q, req)
	case domain.KindCollection:
		return c.ListCollections(ctx, req)
	case domain.KindTag:
		return c.ListTags(ctx, req)
	}
	return domain.Page{}, fmt.Errorf("unknown entity kind %q", q.Kind)
}

// queryParams flattens a query identity into the API's filter parameters.
func queryParams(q domain.QueryIdentity, req domain.PageRequest) map[string]string {
	params := map[string]string{
		"limit":  strconv.Itoa(req.Limit),
		"offset": strconv.Itoa(req.Offset),
	}
	if q.Search != "" {
		params["q"] = q.Search
	}
	if q.Sort != "" {
		params["sort"] = q.Sort
	}
	if len(q.Tags) > 0 {
		params["tags"] = strings.Join(q.Tags, ",")
	}
	if q.CollectionID != "" {
		params["collection_id"] = q.CollectionID
	}
	if q.UserID != "" {
		params["user_id"] = q.UserID
	}
	if !q.Since.IsZero() {
		params["since"] = q.Since.UTC().Format(time.RFC3339)
	}
	if !q.Until.IsZero() {
		params["until"] = q.Until.UTC().Format(time.RFC3339)
	}
	return params
}

// parseTotal reads the optional X-Total-Count header.
func parseTotal(resp *resty.Response) int {
	v := resp.Header().Get(totalCountHeader)
	if v == "" {
		return domain.TotalUnknown
	}
	total, err := strconv.Atoi(v)
	if err != nil || total < 0 {
		return domain.TotalUnknown
	}
	return total
}

func page(items []domain.Entity, req domain.PageRequest, resp *resty.Response) domain.Page {
	return domain.Page{
		Items:  items,
		Offset: req.Offset,
		Limit:  req.Limit,
		Total:  parseTotal(resp),
	}
}
