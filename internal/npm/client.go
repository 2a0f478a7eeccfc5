// internal/npm/client.go
package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"package-pulse/internal/model"
)

var (
	// ErrNotFound is returned when the upstream answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrUnexpectedStatus is returned for any other non-success status.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Options configures a Client. Zero-valued HTTP clients fall back to
// http.DefaultClient.
type Options struct {
	RegistryURL  string
	DownloadsURL string
	// RegistryHTTP carries registry metadata requests and may cache them.
	RegistryHTTP *http.Client
	// DownloadsHTTP carries download counter requests.
	DownloadsHTTP *http.Client
}

// Client talks to the npm registry and the npm download counts API.
type Client struct {
	registry     *http.Client
	downloads    *http.Client
	registryURL  string
	downloadsURL string
	logger       *slog.Logger
}

// NewClient creates and configures a new Client instance.
func NewClient(opts Options, logger *slog.Logger) *Client {
	registry := opts.RegistryHTTP
	if registry == nil {
		registry = http.DefaultClient
	}
	downloads := opts.DownloadsHTTP
	if downloads == nil {
		downloads = http.DefaultClient
	}
	return &Client{
		registry:     registry,
		downloads:    downloads,
		registryURL:  strings.TrimSuffix(opts.RegistryURL, "/"),
		downloadsURL: strings.TrimSuffix(opts.DownloadsURL, "/"),
		logger:       logger,
	}
}

// GetPackage fetches the registry document for name. It returns an error
// wrapping ErrNotFound when the registry does not know the package.
func (c *Client) GetPackage(ctx context.Context, name string) (*model.RegistryRecord, error) {
	var rec model.RegistryRecord
	u := c.registryURL + "/" + EscapeName(name)
	if err := c.getJSON(ctx, c.registry, u, &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: npm package %s", err, name)
		}
		return nil, err
	}
	return &rec, nil
}

// GetWeeklyDownloads fetches the download count for the last week.
func (c *Client) GetWeeklyDownloads(ctx context.Context, name string) (int64, error) {
	var stats model.DownloadStats
	u := c.downloadsURL + "/downloads/point/last-week/" + EscapeName(name)
	if err := c.getJSON(ctx, c.downloads, u, &stats); err != nil {
		return 0, err
	}
	if stats.Downloads < 0 {
		return 0, nil
	}
	return stats.Downloads, nil
}

// EscapeName escapes a package name for use as a single path segment, so a
// scoped name like @scope/pkg becomes @scope%2Fpkg.
func EscapeName(name string) string {
	return url.PathEscape(name)
}

// PackagePageURL returns the public web page for name under base. The name is
// escaped as a URI component, so @types/node becomes %40types%2Fnode.
func PackagePageURL(base, name string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + escapeComponent(name)
}

// escapeComponent percent-encodes every byte outside the URI component
// unreserved set: ASCII letters, digits and -_.!~*'().
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			strings.IndexByte("-_.!~*'()", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
	return b.String()
}

func (c *Client) getJSON(ctx context.Context, hc *http.Client, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching", "url", u)
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	return nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, code)
	}
}
