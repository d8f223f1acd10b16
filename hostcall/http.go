package hostcall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/monojs/monojs/permissions"
)

const (
	DefaultMaxURLLength   = 8192
	DefaultMaxBodySize    = 1 << 20 // 1MB
	DefaultRequestTimeout = 30 * time.Second
)

var allowedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// HTTPConfig bounds outbound requests. Zero values take the defaults.
type HTTPConfig struct {
	MaxBodySize    int64
	MaxURLLength   int
	RequestTimeout time.Duration
}

// HTTP provides the http_request host call, gated by the net permission.
type HTTP struct {
	perms  permissions.Permissions
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP creates an HTTP handler gated by perms.
func NewHTTP(perms permissions.Permissions, cfg HTTPConfig) *HTTP {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.MaxURLLength == 0 {
		cfg.MaxURLLength = DefaultMaxURLLength
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	return &HTTP{
		perms: perms,
		cfg:   cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Request performs an HTTP request on behalf of the guest. The result maps
// to what the script's fetch binding returns: status, headers, body, and
// the final URL after redirects.
func (h *HTTP) Request(ctx context.Context, args map[string]any) (any, error) {
	req, err := h.buildRequest(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := h.perms.CheckNet(req.URL.Hostname()); err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.cfg.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[name] = strings.Join(values, ", ")
	}

	result := map[string]any{
		"status":  resp.StatusCode,
		"headers": headers,
		"body":    string(body),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		result["url"] = resp.Request.URL.String()
	}
	return result, nil
}

// buildRequest validates the guest's arguments and assembles the request.
func (h *HTTP) buildRequest(ctx context.Context, args map[string]any) (*http.Request, error) {
	rawURL, _ := args["url"].(string)
	if rawURL == "" {
		return nil, errors.New("url required")
	}
	if len(rawURL) > h.cfg.MaxURLLength {
		return nil, fmt.Errorf("url longer than %d bytes", h.cfg.MaxURLLength)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	method := http.MethodGet
	if m, ok := args["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}
	if !allowedMethods[method] {
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	var body io.Reader
	if text, ok := args["body"].(string); ok && text != "" {
		if int64(len(text)) > h.cfg.MaxBodySize {
			return nil, fmt.Errorf("request body larger than %d bytes", h.cfg.MaxBodySize)
		}
		body = strings.NewReader(text)
	}

	req, err := http.NewRequestWithContext(ctx, method, parsed.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if raw, ok := args["headers"].(map[string]any); ok {
		for name, value := range raw {
			if text, ok := value.(string); ok {
				req.Header.Set(name, text)
			}
		}
	}
	return req, nil
}
