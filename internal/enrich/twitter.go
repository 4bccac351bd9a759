// Package enrich pulls recent social-media activity for harvested
// authors carrying a twitter handle. It is a thin downstream consumer
// of the author_details.twitter column.
package enrich

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the production Twitter API endpoint.
const DefaultBaseURL = "https://api.twitter.com"

// Tweet is one timeline entry, trimmed to the fields we consume.
type Tweet struct {
	ID        string `json:"id_str"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
}

// TwitterClient fetches user timelines.
type TwitterClient struct {
	http *resty.Client
}

// NewTwitterClient builds a client. An empty baseURL selects
// DefaultBaseURL.
func NewTwitterClient(baseURL, bearerToken string) *TwitterClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(bearerToken)
	return &TwitterClient{http: c}
}

// UserTimeline fetches the most recent posts for a handle.
func (c *TwitterClient) UserTimeline(ctx context.Context, handle string, count int) ([]Tweet, error) {
	if handle == "" {
		return nil, fmt.Errorf("handle is required")
	}
	if count <= 0 {
		count = 20
	}
	var tweets []Tweet
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"screen_name": handle,
			"count":       strconv.Itoa(count),
		}).
		SetResult(&tweets).
		Get("/1.1/statuses/user_timeline.json")
	if err != nil {
		return nil, fmt.Errorf("fetch timeline for %s: %w", handle, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("timeline for %s: status %d", handle, resp.StatusCode())
	}
	return tweets, nil
}
