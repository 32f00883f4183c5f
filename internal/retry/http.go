package retry

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// CheckResponse converts an unsuccessful HTTP response into an error.
// 429 and 5xx responses are retryable; 429 also wraps domain.ErrRateLimited.
// The caller still owns resp.Body.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return RetryableAfter(
			fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode),
			ParseRetryAfter(resp.Header.Get(HeaderRetryAfter)),
		)
	case resp.StatusCode >= 500:
		return RetryableAfter(
			fmt.Errorf("server error (status %d): %s", resp.StatusCode, msg),
			ParseRetryAfter(resp.Header.Get(HeaderRetryAfter)),
		)
	default:
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, msg)
	}
}

// ParseRetryAfter parses a Retry-After value. Unknown values give zero.
func ParseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
