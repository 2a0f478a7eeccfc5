// internal/cli/format_test.go
package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"package-pulse/internal/health"
	"package-pulse/internal/model"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{999_949, "999.9K"},
		{2_300_000, "2.3M"},
		{31_000_000, "31.0M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, abbreviate(tt.n), "abbreviate(%d)", tt.n)
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{30 * time.Hour, "yesterday"},
		{72 * time.Hour, "3 days ago"},
		{1200 * 24 * time.Hour, "1,200 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relativeTime(testNow, testNow.Add(-tt.ago)))
	}
}

func TestWriteReport(t *testing.T) {
	published := testNow.AddDate(0, 0, -10)
	repo := "https://github.com/expressjs/express"
	report := &model.HealthReport{
		Name:             "express",
		Version:          "4.19.2",
		Description:      "Fast, unopinionated, minimalist web framework",
		LastPublish:      &published,
		DaysSincePublish: 10,
		WeeklyDownloads:  31_234_567,
		OpenIssues:       model.UnknownOpenIssues,
		Status:           health.Alive,
		RepoURL:          &repo,
		NpmURL:           "https://www.npmjs.com/package/express",
		Maintainers:      []string{"dougwilson", "wesleytodd"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, testNow))
	out := buf.String()

	assert.Contains(t, out, "express@4.19.2  ALIVE & KICKING")
	assert.Contains(t, out, "This package is actively maintained")
	assert.Contains(t, out, "Last publish:     May 22, 2024 (10 days ago)")
	assert.Contains(t, out, "Last commit:      unknown")
	assert.Contains(t, out, "Weekly downloads: 31.2M (31,234,567)")
	assert.Contains(t, out, "Open issues:      unknown")
	assert.Contains(t, out, "Repository:       https://github.com/expressjs/express")
	assert.Contains(t, out, "Maintainers:      dougwilson, wesleytodd")
}

func TestWriteReport_WithoutVersion(t *testing.T) {
	report := &model.HealthReport{Name: "untagged", Status: health.Dead, OpenIssues: 2, Maintainers: []string{}}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, testNow))

	assert.Contains(t, buf.String(), "untagged  DEAD\n")
	assert.NotContains(t, buf.String(), "@")
}

func TestWriteJSON(t *testing.T) {
	report := &model.HealthReport{Name: "a", Status: health.Dead, OpenIssues: -1, Maintainers: []string{}}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []*model.HealthReport{report}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "dead", decoded["status"])
	assert.Nil(t, decoded["repoUrl"])
	assert.Nil(t, decoded["daysSinceCommit"])
	assert.NotContains(t, decoded, "version")

	buf.Reset()
	require.NoError(t, writeJSON(&buf, []*model.HealthReport{report, report}))
	var list []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &list))
	assert.Len(t, list, 2)
}
