package api

import (
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfd/shelf/internal/logger"
)

// totalCountHeader carries the optional total for paginated list responses.
// Absence means the total is unknown and hasMore falls back to the
// page-size heuristic.
const totalCountHeader = "X-Total-Count"

// Options configures the REST client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	AuthToken string        // bearer token, empty for anonymous
	UserAgent string
}

// Client talks to the bookmarking REST API. It is the only component that
// performs network I/O for entity data; everything else reads the cache.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

// NewClient builds a configured REST client.
func NewClient(opts Options, log logger.Logger) *Client {
	hc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	hc.JSONMarshal = jsoniter.Marshal
	hc.JSONUnmarshal = jsoniter.Unmarshal

	if opts.AuthToken != "" {
		hc.SetAuthToken(opts.AuthToken)
	}

	hc.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		log.Debug("api request",
			logger.String("method", req.Method),
			logger.String("url", req.URL))
		return nil
	})
	hc.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		log.Debug("api response",
			logger.String("method", resp.Request.Method),
			logger.String("url", resp.Request.URL),
			logger.Int("status", resp.StatusCode()),
			logger.Duration("duration", resp.Time()))
		return nil
	})

	return &Client{http: hc, logger: log}
}

// SetAuthToken replaces the bearer token on the underlying client.
func (c *Client) SetAuthToken(token string) {
	c.http.SetAuthToken(token)
}
