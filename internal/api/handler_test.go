// internal/api/handler_test.go
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"package-pulse/internal/github"
	"package-pulse/internal/metrics"
	"package-pulse/internal/npm"
	"package-pulse/internal/resolver"
)

// upstream fakes the registry, download counter and GitHub API on one server.
type upstream struct {
	packages       map[string]string
	registryStatus int
	downloadsOK    bool
	githubOK       bool
	githubCalls    int32
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/registry/"):
		if u.registryStatus != 0 {
			w.WriteHeader(u.registryStatus)
			return
		}
		doc, ok := u.packages[strings.TrimPrefix(r.URL.Path, "/registry/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"Not found"}`)
			return
		}
		fmt.Fprint(w, doc)
	case strings.HasPrefix(r.URL.Path, "/downloads/point/last-week/"):
		if !u.downloadsOK {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"downloads": 1500}`)
	case strings.HasPrefix(r.URL.Path, "/github/"):
		atomic.AddInt32(&u.githubCalls, 1)
		if !u.githubOK {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/commits") {
			fmt.Fprintf(w, `[{"commit": {"author": {"date": %q}}}]`, time.Now().UTC().AddDate(0, 0, -3).Format(time.RFC3339))
			return
		}
		fmt.Fprint(w, `{"open_issues_count": 7}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func packageDocument(name, repository string, publishedDaysAgo int, maintainers int) string {
	var ms []string
	for i := 0; i < maintainers; i++ {
		ms = append(ms, fmt.Sprintf(`{"name": "m%d"}`, i))
	}
	published := time.Now().UTC().AddDate(0, 0, -publishedDaysAgo).Format(time.RFC3339)
	return fmt.Sprintf(`{
		"name": %q,
		"dist-tags": {"latest": "2.0.0"},
		"versions": {"2.0.0": {"description": "a package", "repository": %s}},
		"time": {"2.0.0": %q},
		"maintainers": [%s]
	}`, name, repository, published, strings.Join(ms, ","))
}

func setupRouter(t *testing.T, up *upstream) http.Handler {
	server := httptest.NewServer(up)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	npmClient := npm.NewClient(npm.Options{
		RegistryURL:   server.URL + "/registry",
		DownloadsURL:  server.URL,
		RegistryHTTP:  server.Client(),
		DownloadsHTTP: server.Client(),
	}, logger)
	ghClient, err := github.NewClient("", server.URL+"/github/", server.Client(), logger)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	res := resolver.NewResolver(npmClient, ghClient, metrics.NewRecorder(reg), logger, "https://www.npmjs.com/package/")
	return NewRouter(res, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger, 5*time.Second)
}

func doCheck(t *testing.T, router http.Handler, query string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/check"+query, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestCheckPackage(t *testing.T) {
	t.Run("missing package name", func(t *testing.T) {
		router := setupRouter(t, &upstream{})

		for _, query := range []string{"", "?package="} {
			rec, body := doCheck(t, router, query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]any{"error": "Package name is required"}, body)
		}
	})

	t.Run("unknown package", func(t *testing.T) {
		router := setupRouter(t, &upstream{})

		rec, body := doCheck(t, router, "?package=no-such-package")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, `Package "no-such-package" not found on npm`, body["error"])
	})

	t.Run("registry failure hides the cause", func(t *testing.T) {
		router := setupRouter(t, &upstream{registryStatus: http.StatusBadGateway})

		rec, body := doCheck(t, router, "?package=express")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, map[string]any{"error": "Failed to check package. Please try again."}, body)
	})

	t.Run("healthy package with every upstream available", func(t *testing.T) {
		up := &upstream{
			packages: map[string]string{
				"express": packageDocument("express", `{"type": "git", "url": "git+https://github.com/expressjs/express.git"}`, 200, 2),
			},
			downloadsOK: true,
			githubOK:    true,
		}
		router := setupRouter(t, up)

		rec, body := doCheck(t, router, "?package=express")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "express", body["name"])
		assert.Equal(t, "2.0.0", body["version"])
		assert.Equal(t, "a package", body["description"])
		assert.Equal(t, float64(200), body["daysSincePublish"])
		assert.Equal(t, float64(1500), body["weeklyDownloads"])
		assert.Equal(t, float64(7), body["openIssues"])
		assert.NotNil(t, body["lastCommit"])
		assert.Equal(t, float64(3), body["daysSinceCommit"])
		assert.Equal(t, "alive", body["status"])
		assert.Equal(t, "https://github.com/expressjs/express", body["repoUrl"])
		assert.Equal(t, "https://www.npmjs.com/package/express", body["npmUrl"])
		assert.Equal(t, []any{"m0", "m1"}, body["maintainers"])
		assert.NotEmpty(t, body["lastPublish"])
		assert.Equal(t, int32(2), atomic.LoadInt32(&up.githubCalls))
	})

	t.Run("enrichment upstreams failing still returns a report", func(t *testing.T) {
		up := &upstream{
			packages: map[string]string{
				"express": packageDocument("express", `"https://github.com/expressjs/express"`, 30, 8),
			},
		}
		router := setupRouter(t, up)

		rec, body := doCheck(t, router, "?package=express")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), body["weeklyDownloads"])
		assert.Equal(t, float64(-1), body["openIssues"])
		assert.Contains(t, body, "lastCommit")
		assert.Nil(t, body["lastCommit"])
		assert.Contains(t, body, "daysSinceCommit")
		assert.Nil(t, body["daysSinceCommit"])
		assert.Equal(t, "alive", body["status"])
		assert.Len(t, body["maintainers"], 5)
	})

	t.Run("non-GitHub repository", func(t *testing.T) {
		up := &upstream{
			packages: map[string]string{
				"gl": packageDocument("gl", `"https://gitlab.com/group/gl.git"`, 500, 1),
			},
			downloadsOK: true,
			githubOK:    true,
		}
		router := setupRouter(t, up)

		rec, body := doCheck(t, router, "?package=gl")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, body, "repoUrl")
		assert.Nil(t, body["repoUrl"])
		assert.Equal(t, "dead", body["status"])
		assert.Zero(t, atomic.LoadInt32(&up.githubCalls))
	})

	t.Run("escapes the package name", func(t *testing.T) {
		up := &upstream{
			packages: map[string]string{
				"@scope/pkg": packageDocument("@scope/pkg", `null`, 5, 0),
			},
			downloadsOK: true,
		}
		router := setupRouter(t, up)

		rec, body := doCheck(t, router, "?package="+url.QueryEscape("@scope/pkg"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "@scope/pkg", body["name"])
		assert.Equal(t, "https://www.npmjs.com/package/%40scope%2Fpkg", body["npmUrl"])
		assert.Equal(t, []any{}, body["maintainers"])
	})
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupRouter(t, &upstream{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	// Produce at least one sample.
	doCheck(t, router, "")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `package_checks_total{status="invalid"} 1`)
}
