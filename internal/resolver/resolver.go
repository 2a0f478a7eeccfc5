// internal/resolver/resolver.go
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "package-pulse/internal/errors"
	"package-pulse/internal/github"
	"package-pulse/internal/health"
	"package-pulse/internal/metrics"
	"package-pulse/internal/model"
	"package-pulse/internal/npm"
)

// maxMaintainers caps the maintainer names included in a report.
const maxMaintainers = 5

// Registry is the package registry the resolver reads from.
type Registry interface {
	GetPackage(ctx context.Context, name string) (*model.RegistryRecord, error)
	GetWeeklyDownloads(ctx context.Context, name string) (int64, error)
}

// Repositories is the source-hosting platform used for enrichment.
type Repositories interface {
	GetOpenIssues(ctx context.Context, repo model.GitHubRepo) (int, error)
	GetLastCommitDate(ctx context.Context, repo model.GitHubRepo) (*time.Time, error)
}

// Resolver builds health reports. It holds no per-request state and is safe
// for concurrent use.
type Resolver struct {
	registry    Registry
	repos       Repositories
	metrics     *metrics.Recorder
	logger      *slog.Logger
	packagePage string
	now         func() time.Time
}

// NewResolver creates a new Resolver. packagePage is the base URL of the
// registry's public package pages.
func NewResolver(registry Registry, repos Repositories, recorder *metrics.Recorder, logger *slog.Logger, packagePage string) *Resolver {
	return &Resolver{
		registry:    registry,
		repos:       repos,
		metrics:     recorder,
		logger:      logger,
		packagePage: packagePage,
		now:         time.Now,
	}
}

// Check resolves the health report for the named package.
//
// Only the registry lookup can fail the check; download counts and repository
// data are best-effort and fall back to 0, model.UnknownOpenIssues and nil.
func (r *Resolver) Check(ctx context.Context, name string) (*model.HealthReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		r.metrics.ObserveCheck(metrics.CheckInvalid)
		return nil, &custom_errors.ValidationError{Field: "package", Message: "package name is required"}
	}
	logger := r.logger.With("package", name)

	rec, err := r.fetchRecord(ctx, name)
	if err != nil {
		var notFound *custom_errors.NotFoundError
		if errors.As(err, &notFound) {
			r.metrics.ObserveCheck(metrics.CheckNotFound)
		} else {
			r.metrics.ObserveCheck(metrics.CheckError)
		}
		return nil, err
	}

	now := r.now()
	latest := rec.LatestTag()
	version := rec.Version(latest)

	report := &model.HealthReport{
		Name:             rec.Name,
		Version:          latest,
		Description:      version.Description,
		DaysSincePublish: health.UnknownPublishDays,
		OpenIssues:       model.UnknownOpenIssues,
		NpmURL:           npm.PackagePageURL(r.packagePage, name),
		Maintainers:      maintainerNames(rec.Maintainers),
	}
	if report.Name == "" {
		report.Name = name
	}
	if report.Description == "" {
		report.Description = rec.Description
	}
	if published, ok := lastPublish(rec, latest); ok {
		report.LastPublish = &published
		report.DaysSincePublish = health.DaysSince(now, published)
	}

	repoField := version.Repository
	if !repoField.Present() {
		repoField = rec.Repository
	}
	var repo model.GitHubRepo
	repoURL, hasRepo := github.RepoURLFromField(repoField)
	if hasRepo {
		report.RepoURL = &repoURL
		repo, hasRepo = github.ParseRepoPath(repoURL)
	}

	// Each task writes its own report field and never returns an error.
	var g errgroup.Group
	g.Go(func() error {
		report.WeeklyDownloads = r.weeklyDownloads(ctx, logger, name)
		return nil
	})
	if hasRepo {
		g.Go(func() error {
			report.OpenIssues = r.openIssues(ctx, logger, repo)
			return nil
		})
		g.Go(func() error {
			report.LastCommit = r.lastCommit(ctx, logger, repo)
			return nil
		})
	} else {
		logger.Debug("No GitHub repository to enrich from", "repository", repoField.URL)
	}
	_ = g.Wait()

	if report.LastCommit != nil {
		days := health.DaysSince(now, *report.LastCommit)
		report.DaysSinceCommit = &days
	}
	report.Status = health.Classify(report.DaysSincePublish, report.DaysSinceCommit)

	r.metrics.ObserveCheck(string(report.Status))
	logger.Info("Package checked", "status", report.Status, "days_since_publish", report.DaysSincePublish)
	return report, nil
}

func (r *Resolver) fetchRecord(ctx context.Context, name string) (*model.RegistryRecord, error) {
	start := time.Now()
	rec, err := r.registry.GetPackage(ctx, name)
	switch {
	case err == nil:
		r.metrics.ObserveUpstream(metrics.UpstreamRegistry, metrics.OutcomeOK, start)
		return rec, nil
	case errors.Is(err, npm.ErrNotFound):
		r.metrics.ObserveUpstream(metrics.UpstreamRegistry, metrics.OutcomeNotFound, start)
		return nil, &custom_errors.NotFoundError{Package: name}
	default:
		r.metrics.ObserveUpstream(metrics.UpstreamRegistry, metrics.OutcomeError, start)
		return nil, &custom_errors.UpstreamError{Package: name, Err: err}
	}
}

func (r *Resolver) weeklyDownloads(ctx context.Context, logger *slog.Logger, name string) int64 {
	start := time.Now()
	n, err := r.registry.GetWeeklyDownloads(ctx, name)
	r.metrics.ObserveUpstream(metrics.UpstreamDownloads, outcome(err), start)
	if err != nil {
		logger.Debug("Download count unavailable", "error", err)
		return 0
	}
	return n
}

func (r *Resolver) openIssues(ctx context.Context, logger *slog.Logger, repo model.GitHubRepo) int {
	start := time.Now()
	n, err := r.repos.GetOpenIssues(ctx, repo)
	r.metrics.ObserveUpstream(metrics.UpstreamGithubRepo, outcome(err), start)
	if err != nil {
		logger.Warn("Repository metadata unavailable", "repo", repo.String(), "error", err)
		return model.UnknownOpenIssues
	}
	return n
}

func (r *Resolver) lastCommit(ctx context.Context, logger *slog.Logger, repo model.GitHubRepo) *time.Time {
	start := time.Now()
	t, err := r.repos.GetLastCommitDate(ctx, repo)
	r.metrics.ObserveUpstream(metrics.UpstreamGithubCommits, outcome(err), start)
	if err != nil {
		logger.Warn("Latest commit unavailable", "repo", repo.String(), "error", err)
		return nil
	}
	return t
}

// lastPublish prefers the publish time of the latest version over the
// document's modified time.
func lastPublish(rec *model.RegistryRecord, latest string) (time.Time, bool) {
	if t, ok := rec.Time.Lookup(latest); ok {
		return t, true
	}
	return rec.Time.Lookup("modified")
}

func maintainerNames(maintainers []model.Maintainer) []string {
	names := make([]string, 0, maxMaintainers)
	for _, m := range maintainers {
		if len(names) == maxMaintainers {
			break
		}
		if name := m.DisplayName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, npm.ErrNotFound), github.IsNotFound(err):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
