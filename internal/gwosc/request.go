package gwosc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Links lists the strain files of dataset for ifo that overlap [start, end).
func (c *Client) Links(ctx context.Context, dataset, ifo string, start, end float64) ([]StrainFile, error) {
	url := fmt.Sprintf("%s/archive/links/%s/%s/%d/%d/json/",
		c.baseURL, dataset, ifo, int64(math.Floor(start)), int64(math.Ceil(end)))

	body, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp linksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshal links response"), ErrMalformed)
	}

	return resp.Strain, nil
}

// FetchSamples downloads one strain file and parses its samples. Files are
// served from the URL cache when one is configured.
func (c *Client) FetchSamples(ctx context.Context, url string) ([]float64, error) {
	if c.urlCache != nil {
		samples, ok, err := c.urlCache.Get(url)
		if err != nil {
			c.logger.Warn("url cache read failed", zap.String("url", url), zap.Error(err))
		} else if ok {
			c.logger.Debug("url cache hit", zap.String("url", url))
			return samples, nil
		}
	}

	body, err := c.doWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	samples, err := ParseText(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", url)
	}

	if c.urlCache != nil {
		if err := c.urlCache.Put(url, samples); err != nil {
			c.logger.Warn("url cache write failed", zap.String("url", url), zap.Error(err))
		}
	}

	return samples, nil
}

// doRequest performs a GET request for url.
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			URL:        url,
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry. Transport
// errors and retryable status codes are retried; cancellation is not.
func (c *Client) doWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff / 2
			if backoff > 0 {
				jitter += time.Duration(rand.Int64N(int64(backoff)))
			}
			c.logger.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", jitter),
				zap.String("url", url),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
	}

	return nil, errors.Wrap(lastErr, "max retries exceeded")
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return true
}
