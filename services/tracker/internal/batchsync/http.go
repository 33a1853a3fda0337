package batchsync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const contentType = "text/plain;charset=UTF-8"

// HTTPPost sends each batch as a one-way POST. The response status and body
// are ignored; only a failure to complete the request counts as an error.
type HTTPPost struct {
	URL        string
	HTTPClient *http.Client
	CB         *gobreaker.CircuitBreaker
	Log        *zap.Logger
}

type HTTPOption func(*HTTPPost)

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) HTTPOption {
	return func(h *HTTPPost) { h.CB = cb }
}

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPPost) { h.HTTPClient = c }
}

func WithHTTPLogger(log *zap.Logger) HTTPOption {
	return func(h *HTTPPost) { h.Log = log }
}

func NewHTTPPost(url string, timeout time.Duration, opts ...HTTPOption) *HTTPPost {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	h := &HTTPPost{
		URL:        strings.TrimSpace(url),
		HTTPClient: &http.Client{Timeout: timeout},
		Log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *HTTPPost) Name() string { return "http" }

func (h *HTTPPost) Send(ctx context.Context, payload []byte) error {
	if h.URL == "" {
		return ErrUnavailable
	}
	if h.CB == nil {
		return h.post(ctx, payload)
	}
	_, err := h.CB.Execute(func() (interface{}, error) {
		return nil, h.post(ctx, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		h.Log.Debug("batchsync: circuit open, skipping post", zap.Error(err))
	}
	return err
}

func (h *HTTPPost) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	return nil
}
