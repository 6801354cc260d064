package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vapor-http-bridge/pkg/canonical"
)

// HTTPWorker forwards canonical requests to a loopback HTTP upstream — the
// stand-in for the real application process — and captures the upstream's
// status, headers, and body. It implements runtime.Worker.
type HTTPWorker struct {
	upstream string
	client   *http.Client
	logger   *logrus.Logger
	basePath string
}

// NewHTTPWorker creates a worker targeting the given upstream base URL,
// e.g. "http://127.0.0.1:9000".
func NewHTTPWorker(upstream string, timeout time.Duration, logger *logrus.Logger) *HTTPWorker {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPWorker{
		upstream: strings.TrimRight(upstream, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Boot records the application base path and verifies the upstream is
// configured. The upstream process itself is managed externally.
func (w *HTTPWorker) Boot(ctx context.Context, basePath string) error {
	if w.upstream == "" {
		return fmt.Errorf("http worker: no upstream configured")
	}
	w.basePath = basePath
	w.logger.WithFields(logrus.Fields{
		"upstream":  w.upstream,
		"base_path": basePath,
	}).Info("HTTP worker booted")
	return nil
}

// Execute replays the canonical request against the upstream and captures
// the exchange through the provided callback. A transport failure is the
// unrecoverable-fault path: the callback is never invoked and the error is
// returned to the bridge.
func (w *HTTPWorker) Execute(ctx context.Context, req *canonical.Request, inv *canonical.Invocation, capture func(*canonical.Response)) error {
	method := req.Method()
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, w.upstream+req.URI(), bytes.NewReader(req.Body))
	if err != nil {
		return fmt.Errorf("http worker: build request: %w", err)
	}
	for name, value := range req.Headers {
		if name == "host" {
			httpReq.Host = value
			continue
		}
		httpReq.Header.Set(name, value)
	}
	if inv != nil && inv.ID != "" {
		httpReq.Header.Set("x-invocation-id", inv.ID)
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http worker: upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("http worker: read upstream response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[strings.ToLower(name)] = resp.Header.Get(name)
	}

	capture(&canonical.Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	})
	return nil
}

// Terminate releases the worker's idle connections. The upstream process is
// owned elsewhere and is left running.
func (w *HTTPWorker) Terminate(ctx context.Context) error {
	w.client.CloseIdleConnections()
	w.logger.WithField("upstream", w.upstream).Info("HTTP worker terminated")
	return nil
}
