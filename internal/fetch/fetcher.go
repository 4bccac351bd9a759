// Package fetch retrieves pages with Colly and hands back parsed
// goquery documents. It is the only component that touches the network
// for scraping.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Fetcher fetches one URL and returns the parsed document tree.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher implements Fetcher using a Colly collector. Each Fetch
// clones the base collector so hooks never leak between requests.
type CollyFetcher struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

// NewCollyFetcher builds a CollyFetcher.
func NewCollyFetcher(cfg Config, logger *zap.Logger) *CollyFetcher {
	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode, so set the field directly to keep Visit synchronous.
	c := colly.NewCollector()
	c.Async = false
	c.IgnoreRobotsTxt = false
	c.WithTransport(newHTTPTransport())
	return &CollyFetcher{cfg: cfg, base: c, logger: logger}
}

// Fetch executes a single HTTP GET and parses the response body.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		body     []byte
		fetchErr error
	)
	start := time.Now()
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", rawURL, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	f.logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	return doc, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
