package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/trip-planner/internal/infra/config"
)

const retryBodyLimit = 1 << 20 // 1 MiB

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// retryPolicy decides which POST requests are replayed. Routes that run the pricing or
// itinerary pipeline are normally excluded: a replay repeats the LLM call and the whole
// provider fan-out.
type retryPolicy struct {
	maxAttempts int
	baseBackoff time.Duration
	statuses    map[int]struct{}
	exclude     map[string]struct{}
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		statuses:    make(map[int]struct{}, len(cfg.Statuses)),
		exclude:     make(map[string]struct{}, len(cfg.Exclude)),
	}
	for _, status := range cfg.Statuses {
		p.statuses[status] = struct{}{}
	}
	if len(p.statuses) == 0 {
		p.statuses[http.StatusServiceUnavailable] = struct{}{}
	}
	for _, path := range cfg.Exclude {
		p.exclude[path] = struct{}{}
	}
	return p
}

func (p retryPolicy) applies(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	_, skip := p.exclude[r.URL.Path]
	return !skip
}

func (p retryPolicy) retryable(status int) bool {
	_, ok := p.statuses[status]
	return ok
}

// backoff doubles per attempt, starting at baseBackoff before the second attempt.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.baseBackoff * time.Duration(1<<(attempt-2))
}

func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	policy := newRetryPolicy(cfg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.applies(r) {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := readRequestBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		var buffered *bufferedResponse
		for attempt := 1; attempt <= policy.maxAttempts; attempt++ {
			if delay := policy.backoff(attempt); delay > 0 {
				select {
				case <-r.Context().Done():
					buffered.commit()
					return
				case <-time.After(delay):
				}
			}

			buffered = newBufferedResponse(w)
			attemptReq := r.Clone(r.Context())
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))

			handler.ServeHTTP(buffered, attemptReq)
			if !policy.retryable(buffered.status) || attempt == policy.maxAttempts {
				break
			}
			logger.Warn("upstream unavailable, retrying request", "path", r.URL.Path, "status", buffered.status, "attempt", attempt)
		}
		buffered.commit()
	})
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// bufferedResponse holds one attempt's response until it is known to be final.
type bufferedResponse struct {
	dst         http.ResponseWriter
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newBufferedResponse(dst http.ResponseWriter) *bufferedResponse {
	return &bufferedResponse{dst: dst, header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) commit() {
	if b == nil {
		return
	}
	dst := b.dst.Header()
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	b.dst.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = b.dst.Write(b.body.Bytes())
	}
}
