// internal/github/repourl.go
package github

import (
	"regexp"
	"strings"

	"package-pulse/internal/model"
)

var repoPathPattern = regexp.MustCompile(`github\.com/([^/?#]+)/([^/?#]+)`)

// NormalizeRepoURL rewrites the git URL forms found in package manifests to a
// browsable https URL. Only GitHub-hosted repositories are recognised; for
// anything else ok is false.
func NormalizeRepoURL(raw string) (u string, ok bool) {
	u = strings.TrimSpace(raw)
	u = strings.TrimPrefix(u, "git+")
	u = strings.TrimSuffix(u, ".git")
	switch {
	case strings.HasPrefix(u, "git://"):
		u = "https://" + strings.TrimPrefix(u, "git://")
	case strings.HasPrefix(u, "ssh://git@github.com"):
		u = "https://github.com" + strings.TrimPrefix(u, "ssh://git@github.com")
	case strings.HasPrefix(u, "git@github.com:"):
		u = "https://github.com/" + strings.TrimPrefix(u, "git@github.com:")
	}
	if !strings.Contains(u, "github.com") {
		return "", false
	}
	return u, true
}

// RepoURLFromField normalizes a registry repository field of either shape.
func RepoURLFromField(f model.RepositoryField) (string, bool) {
	switch f.Shape {
	case model.RepositoryString, model.RepositoryObject:
		if f.URL == "" {
			return "", false
		}
		return NormalizeRepoURL(f.URL)
	default:
		return "", false
	}
}

// ParseRepoPath extracts the owner and repository name from a GitHub URL.
func ParseRepoPath(u string) (model.GitHubRepo, bool) {
	m := repoPathPattern.FindStringSubmatch(u)
	if m == nil {
		return model.GitHubRepo{}, false
	}
	return model.GitHubRepo{Owner: m[1], Name: m[2]}, true
}
