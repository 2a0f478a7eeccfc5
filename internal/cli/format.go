// internal/cli/format.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"package-pulse/internal/health"
	"package-pulse/internal/model"
)

type statusLabel struct {
	title  string
	detail string
}

var statusLabels = map[health.Status]statusLabel{
	health.Alive:   {"Alive & Kicking", "This package is actively maintained"},
	health.Slowing: {"On Life Support", "Activity has slowed down - proceed with caution"},
	health.Dead:    {"Dead", "This package appears to be abandoned"},
}

var printer = message.NewPrinter(language.English)

// writeReport renders a report as a human-readable card.
func writeReport(w io.Writer, r *model.HealthReport, now time.Time) error {
	label, ok := statusLabels[r.Status]
	if !ok {
		label = statusLabel{title: string(r.Status)}
	}

	var b strings.Builder
	title := r.Name
	if r.Version != "" {
		title += "@" + r.Version
	}
	printer.Fprintf(&b, "%s  %s\n", title, strings.ToUpper(label.title))
	if label.detail != "" {
		printer.Fprintf(&b, "  %s\n", label.detail)
	}
	if r.Description != "" {
		printer.Fprintf(&b, "  %s\n", r.Description)
	}
	printer.Fprintf(&b, "  Last publish:     %s\n", formatTimestamp(now, r.LastPublish))
	printer.Fprintf(&b, "  Last commit:      %s\n", formatTimestamp(now, r.LastCommit))
	printer.Fprintf(&b, "  Weekly downloads: %s (%d)\n", abbreviate(r.WeeklyDownloads), r.WeeklyDownloads)
	if r.OpenIssues == model.UnknownOpenIssues {
		printer.Fprintf(&b, "  Open issues:      unknown\n")
	} else {
		printer.Fprintf(&b, "  Open issues:      %d\n", r.OpenIssues)
	}
	repo := "none"
	if r.RepoURL != nil {
		repo = *r.RepoURL
	}
	printer.Fprintf(&b, "  Repository:       %s\n", repo)
	printer.Fprintf(&b, "  npm:              %s\n", r.NpmURL)
	if len(r.Maintainers) > 0 {
		printer.Fprintf(&b, "  Maintainers:      %s\n", strings.Join(r.Maintainers, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeJSON renders reports as the same JSON the HTTP endpoint returns.
func writeJSON(w io.Writer, reports []*model.HealthReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(reports[0])
	}
	return enc.Encode(reports)
}

func formatTimestamp(now time.Time, t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", t.Format("Jan 2, 2006"), relativeTime(now, *t))
}

// abbreviate shortens large counts: 1500 becomes "1.5K", 2300000 "2.3M".
func abbreviate(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func relativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
	days := health.DaysSince(now, t)
	if days == 1 {
		return "yesterday"
	}
	return printer.Sprintf("%d days ago", days)
}
