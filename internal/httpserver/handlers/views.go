package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shelfd/shelf/internal/domain"
	"github.com/shelfd/shelf/internal/httpserver/deps"
	"github.com/shelfd/shelf/internal/logger"
)

type viewResponse struct {
	Items   []domain.Entity `json:"items"`
	HasMore bool            `json:"has_more"`
	Stale   bool            `json:"stale"`
	Phase   string          `json:"phase"`
}

// View serves the flattened items of one query identity, loading the first
// page on demand. Already-loaded views are served from the cache as-is, stale
// or not; revalidation happens in the background.
func View(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseViewQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if _, ok := d.Cache.Get(q); !ok {
			if err := d.Pager.Load(r.Context(), q); err != nil {
				d.Logger.Error("view load failed", logger.String("view", q.Key()), logger.Error(err))
				http.Error(w, "failed to load view", http.StatusBadGateway)
				return
			}
		}

		writeView(w, d, q)
	}
}

// ViewMore appends the next page to a view. A view that has not been loaded
// yet gets its first page instead; an exhausted view is returned unchanged.
func ViewMore(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseViewQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if _, ok := d.Cache.Get(q); !ok {
			err = d.Pager.Load(r.Context(), q)
		} else {
			err = d.Pager.LoadMore(r.Context(), q)
		}
		if err != nil {
			d.Logger.Error("view page fetch failed", logger.String("view", q.Key()), logger.Error(err))
			http.Error(w, "failed to fetch page", http.StatusBadGateway)
			return
		}

		writeView(w, d, q)
	}
}

func writeView(w http.ResponseWriter, d deps.Deps, q domain.QueryIdentity) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(viewResponse{
		Items:   d.Cache.Flatten(q),
		HasMore: d.Pager.HasMore(q),
		Stale:   d.Cache.Stale(q),
		Phase:   d.Pager.Phase(q).String(),
	})
}

var viewKinds = map[string]domain.Kind{
	"":           domain.KindBookmark,
	"bookmark":   domain.KindBookmark,
	"activity":   domain.KindActivity,
	"collection": domain.KindCollection,
	"tag":        domain.KindTag,
}

// parseViewQuery maps query parameters onto a query identity. The parameter
// names mirror the upstream API's filter parameters.
func parseViewQuery(r *http.Request) (domain.QueryIdentity, error) {
	params := r.URL.Query()

	kind, ok := viewKinds[params.Get("kind")]
	if !ok {
		return domain.QueryIdentity{}, fmt.Errorf("unknown kind %q", params.Get("kind"))
	}

	q := domain.QueryIdentity{
		Kind:         kind,
		Search:       params.Get("q"),
		Sort:         params.Get("sort"),
		CollectionID: params.Get("collection_id"),
		UserID:       params.Get("user_id"),
	}
	if raw := params.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	var err error
	if q.Since, err = parseTimeParam(params.Get("since")); err != nil {
		return domain.QueryIdentity{}, fmt.Errorf("invalid since: %w", err)
	}
	if q.Until, err = parseTimeParam(params.Get("until")); err != nil {
		return domain.QueryIdentity{}, fmt.Errorf("invalid until: %w", err)
	}
	return q, nil
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}
