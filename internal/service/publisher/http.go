package publisher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	"ChainPulse/pkg/logger"
)

// HTTPPublisher posts updates through a bearer-token social API and reads
// back the account's recent timeline for duplicate suppression.
type HTTPPublisher struct {
	baseURL     string
	bearerToken string
	userID      string
	recentLimit int

	http *xhttp.Client
	log  *logger.Logger
}

// PublisherOption configures the HTTPPublisher.
type PublisherOption func(*HTTPPublisher)

// WithPublisherHTTPClient injects the HTTP client.
func WithPublisherHTTPClient(hc *xhttp.Client) PublisherOption {
	return func(p *HTTPPublisher) { p.http = hc }
}

func NewHTTPPublisher(cfg *config.Config, log *logger.Logger, opts ...PublisherOption) *HTTPPublisher {
	p := &HTTPPublisher{
		baseURL:     strings.TrimRight(cfg.Publisher.BaseURL, "/"),
		bearerToken: cfg.Publisher.BearerToken,
		userID:      cfg.Publisher.UserID,
		recentLimit: cfg.Publisher.RecentLimit,
		http:        xhttp.NewClient(xhttp.WithTimeout(cfg.Publisher.Timeout)),
		log:         log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type createPostRequest struct {
	Text string `json:"text"`
}

type createPostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type timelineResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Post publishes one update.
func (p *HTTPPublisher) Post(ctx context.Context, text string) error {
	var resp createPostResponse
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     p.baseURL + "/2/tweets",
		Headers: p.headers(),
		Body:    createPostRequest{Text: text},
	}, &resp)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	p.log.Info("post published", logger.String("id", resp.Data.ID))
	return nil
}

// RecentPosts returns the text of the account's most recent posts.
func (p *HTTPPublisher) RecentPosts(ctx context.Context) ([]string, error) {
	var resp timelineResponse
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/2/users/%s/tweets", p.baseURL, p.userID),
		Headers: p.headers(),
		QueryParams: map[string][]string{
			"max_results": {strconv.Itoa(p.recentLimit)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch timeline: %w", err)
	}

	posts := make([]string, 0, len(resp.Data))
	for _, item := range resp.Data {
		posts = append(posts, item.Text)
	}
	return posts, nil
}

func (p *HTTPPublisher) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.bearerToken,
		"Content-Type":  "application/json",
	}
}
