package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"pricecheck/internal/errs"
)

// Retry is a reusable retry policy: a bounded number of attempts with
// exponential backoff on transport errors and rate-limit responses.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetry matches the upstream scraping providers' rate limits.
func DefaultRetry() Retry {
	return Retry{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// Do runs attempt until it yields a non-retryable outcome. A transport
// error or a 429 response triggers backoff and another attempt; any
// other response is returned as-is for the caller to interpret. The
// attempt func must build a fresh request each call.
func (r Retry) Do(ctx context.Context, attempt func() (*http.Response, error)) (*http.Response, error) {
	max := r.MaxAttempts
	if max <= 0 {
		max = 1
	}
	delay := r.BaseDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < max; i++ {
		if i > 0 {
			backoff := delay << (i - 1)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, errs.Wrap(errs.KindNetwork, "retry canceled", ctx.Err())
			case <-timer.C:
			}
		}

		resp, err := attempt()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			// Drain so the connection can be reused before backing off.
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
			lastErr = errs.Newf(errs.KindNetwork, "rate limited: %s", resp.Request.URL.Host)
			continue
		}
		return resp, nil
	}
	return nil, errs.Wrap(errs.KindNetwork, "request failed after retries", lastErr)
}
