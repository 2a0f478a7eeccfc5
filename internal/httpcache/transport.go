// internal/httpcache/transport.go
package httpcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HeaderFromCache is set on responses served from the store.
const HeaderFromCache = "X-From-Cache"

// Store persists cached responses. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Transport is an http.RoundTripper that reuses successful GET responses for
// a fixed period. It only saves upstream load: store failures are treated as
// misses and never surface to the caller.
type Transport struct {
	base   http.RoundTripper
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewTransport wraps base. A nil base uses http.DefaultTransport; a nil store
// or a non-positive ttl disables caching.
func NewTransport(base http.RoundTripper, store Store, ttl time.Duration, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		base:   base,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

type entry struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.store == nil || t.ttl <= 0 {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	key := cacheKey(req)

	data, ok, err := t.store.Get(ctx, key)
	if err != nil {
		t.logger.Warn("Response cache read failed", "key", key, "error", err)
	} else if ok {
		var e entry
		if err := json.Unmarshal(data, &e); err == nil {
			t.logger.Debug("Serving response from cache", "key", key)
			return e.response(req), nil
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	encoded, err := json.Marshal(entry{StatusCode: resp.StatusCode, Header: resp.Header, Body: body})
	if err == nil {
		err = t.store.Set(ctx, key, encoded, t.ttl)
	}
	if err != nil {
		t.logger.Warn("Response cache write failed", "key", key, "error", err)
	}
	return resp, nil
}

func (e entry) response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(HeaderFromCache, "1")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// cacheKey distinguishes representations negotiated through Accept.
func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String() + " " + req.Header.Get("Accept")
}
