// Package collyfetcher implements the document fetcher using gocolly.
package collyfetcher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/harvester"
	"github.com/ldes-tools/harvester/internal/metrics"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements harvester.Fetcher using a Colly collector. Each fetch
// runs on a clone of the base collector; transient failures are retried
// according to the injected policy, with backoff between attempts.
type Fetcher struct {
	cfg           Config
	retry         harvester.RetryPolicy
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, retry harvester.RetryPolicy, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []colly.CollectorOption{
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}
	c := colly.NewCollector(opts...)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	return &Fetcher{
		cfg:           cfg,
		retry:         retry,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch retrieves the URL and decodes its body as a JSON document. Retries
// are exhausted into a *harvester.FetchError; a body that is not valid JSON
// yields a *harvester.ParseError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (harvester.Document, error) {
	f.logger.Info("Fetching", zap.String("url", rawURL))

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &harvester.FetchError{URL: rawURL, Err: err}
		}

		body, err := f.get(rawURL)
		if err == nil {
			var doc harvester.Document
			if jerr := json.Unmarshal(body, &doc); jerr != nil {
				return nil, &harvester.ParseError{URL: rawURL, Err: jerr}
			}
			return doc, nil
		}

		lastErr = err
		if !f.retry.ShouldRetry(err, attempt+1) {
			break
		}
		f.logger.Warn("Fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		metrics.IncFetchRetry()

		select {
		case <-ctx.Done():
			return nil, &harvester.FetchError{URL: rawURL, Err: ctx.Err()}
		case <-time.After(f.retry.Backoff(attempt)):
		}
	}
	return nil, &harvester.FetchError{URL: rawURL, Err: lastErr}
}

// get executes a single HTTP GET on a collector clone.
func (f *Fetcher) get(rawURL string) ([]byte, error) {
	collector := f.baseCollector.Clone()

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = &harvester.StatusError{Code: r.StatusCode, Err: err}
			return
		}
		fetchErr = err
	})

	if err := collector.Visit(rawURL); err != nil {
		return nil, err
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if body == nil {
		return nil, errors.New("empty response body")
	}
	return body, nil
}
