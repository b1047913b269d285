package source

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/battdiag/internal/cycle"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/logger"
	"github.com/google/uuid"
	"golang.org/x/net/http2"
)

const (
	userAgent       = "battdiag"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// HTTPClient reads snapshots from the REST API:
//
//	GET {base}/snapshots?imei=&limit=
//	GET {base}/snapshots/summary
//	GET {base}/snapshots/{imei}/cycles/{n}
type HTTPClient struct {
	base string
	h    *http.Client
}

func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	errFactory := errors.New()

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errFactory.WithData(ErrInvalidBaseURL, cfg.BaseURL)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, errFactory.Wrap(ErrTransportInit, err)
	}

	return NewHTTPClientWith(strings.TrimRight(cfg.BaseURL, "/"), &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}), nil
}

// NewHTTPClientWith uses an existing http.Client, e.g. one from httptest.
func NewHTTPClientWith(base string, h *http.Client) *HTTPClient {
	if h == nil {
		h = http.DefaultClient
	}
	return &HTTPClient{base: strings.TrimRight(base, "/"), h: h}
}

func (*HTTPClient) Name() string {
	return BackendAPI
}

func (c *HTTPClient) Snapshots(ctx context.Context, deviceID string, limit int) ([]cycle.Record, error) {
	q := url.Values{}
	q.Set("imei", deviceID)
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/snapshots?"+q.Encode())
	if err != nil {
		return nil, err
	}

	return records(body)
}

func (c *HTTPClient) Summary(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, "/snapshots/summary")
	if err != nil {
		return nil, err
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errors.New().WithData(ErrDecodeFailed, "summary is not an object")
	}
	return obj, nil
}

func (c *HTTPClient) CycleDetails(ctx context.Context, deviceID string, cycleNumber int) (cycle.Record, error) {
	path := "/snapshots/" + url.PathEscape(deviceID) + "/cycles/" + strconv.Itoa(cycleNumber)

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errors.New().WithData(ErrDecodeFailed, "cycle details is not an object")
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		if _, hasCycle := obj[cycle.KeyCycleNumber]; !hasCycle {
			obj = inner
		}
	}
	return cycle.Record(obj), nil
}

func (*HTTPClient) Close() error {
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string) (any, error) {
	errFactory := errors.New()
	target := c.base + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errFactory.Wrap(ErrRequestFailed, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, requestID)

	logger.Debug().
		Str("url", target).
		Str("request_id", requestID).
		Msg("Requesting snapshots API")

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, errFactory.Wrap(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errFactory.WithData(ErrBadStatus, struct {
			URL    string
			Status int
			Body   string
		}{
			URL:    target,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		})
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errFactory.Wrap(ErrDecodeFailed, err)
	}
	return body, nil
}

// records accepts either {"data": [...]} or a bare array. Items that are not
// objects cannot be cycle records and are dropped.
func records(body any) ([]cycle.Record, error) {
	var items []any
	switch b := body.(type) {
	case []any:
		items = b
	case map[string]any:
		data, ok := b["data"]
		if !ok || data == nil {
			return []cycle.Record{}, nil
		}
		list, ok := data.([]any)
		if !ok {
			return nil, errors.New().WithData(ErrDecodeFailed, "data is not a list")
		}
		items = list
	case nil:
		return []cycle.Record{}, nil
	default:
		return nil, errors.New().WithData(ErrDecodeFailed, "unexpected snapshots payload")
	}

	out := make([]cycle.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			logger.Debug().Int("position", i).Msg("Skipping non-object snapshot")
			continue
		}
		out = append(out, cycle.Record(obj))
	}
	return out, nil
}
