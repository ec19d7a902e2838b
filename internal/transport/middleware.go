package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

// backoffBase is the first retry delay; it doubles on each attempt.
var backoffBase = time.Second

// ErrMalformedResponse marks a 200 reply whose body could not be decoded.
// The backend already accepted the snapshot, so it is never resent.
var ErrMalformedResponse = stderrors.New("transport: malformed 200 response")

// StatusError is returned for every non-200 backend reply.
type StatusError struct {
	StatusCode int
	Message    string
	// RetryAfter is zero when the backend did not say.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transport: %s (HTTP %d): %s", reason(e.StatusCode), e.StatusCode, e.Message)
	}
	return fmt.Sprintf("transport: %s (HTTP %d)", reason(e.StatusCode), e.StatusCode)
}

// IsAuth reports whether the backend rejected the credentials.
func (e *StatusError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func reason(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "authentication failed"
	case status == http.StatusPaymentRequired:
		return "quota exceeded"
	case status == http.StatusGone:
		return "exporter deprecated"
	case status == http.StatusTooManyRequests:
		return "rate limited"
	case status >= 500:
		return "server error"
	default:
		return "unexpected status"
	}
}

// IsRetryable reports whether Send should try again after err. Transport
// failures and 5xx replies are retried; other status errors are not.
func IsRetryable(err error) bool {
	if stderrors.Is(err, ErrMalformedResponse) {
		return false
	}
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return !stderrors.Is(err, context.Canceled) && !stderrors.Is(err, context.DeadlineExceeded)
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// authTransport adds an Authorization: Bearer header to every request.
type authTransport struct {
	token string
	next  http.RoundTripper
}

// WithAuth wraps a RoundTripper with bearer-token authorization.
func WithAuth(token string, next http.RoundTripper) http.RoundTripper {
	return &authTransport{token: token, next: next}
}

func (a *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+a.token)
	return a.next.RoundTrip(req)
}

// loggingTransport logs request method/URL and response status.
type loggingTransport struct {
	logger *slog.Logger
	next   http.RoundTripper
}

// WithLogging wraps a RoundTripper with request/response logging.
func WithLogging(logger *slog.Logger, next http.RoundTripper) http.RoundTripper {
	return &loggingTransport{logger: logger, next: next}
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Warn("export request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return resp, err
	}

	l.logger.Debug("export request completed",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}

// sleepWithBackoff waits backoffBase * 2^attempt or until ctx is done.
func sleepWithBackoff(ctx context.Context, attempt int) error {
	d := backoffBase << attempt
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryAfterDelay reads the Retry-After header (seconds), falling back to
// retry_after_seconds in an already decoded error body.
func retryAfterDelay(resp *http.Response, body *model.ExportErrorResponse) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if body != nil && body.RetryAfterSeconds != nil && *body.RetryAfterSeconds > 0 {
		return time.Duration(*body.RetryAfterSeconds) * time.Second
	}
	return 0
}

// drainAndClose reads remaining body bytes and closes, preventing connection leaks.
func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	body.Close()
}

// ParseResponse reads an HTTP response and returns the decoded body on 200
// or a *StatusError otherwise.
func ParseResponse(resp *http.Response) (*model.ExportResponse, error) {
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusOK {
		var result model.ExportResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		return &result, nil
	}

	se := &StatusError{StatusCode: resp.StatusCode}
	var body model.ExportErrorResponse
	decoded := resp.Body != nil && json.NewDecoder(resp.Body).Decode(&body) == nil
	if decoded {
		se.Message = body.Message
		se.RetryAfter = retryAfterDelay(resp, &body)
	} else {
		se.RetryAfter = retryAfterDelay(resp, nil)
	}
	return nil, se
}
