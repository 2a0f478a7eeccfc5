// internal/model/models.go
package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"package-pulse/internal/health"
)

// UnknownOpenIssues is reported when the open issue count could not be fetched.
const UnknownOpenIssues = -1

// RegistryRecord is the subset of an npm packument the resolver reads.
// Versions are kept raw so that a malformed historical version cannot break
// decoding of the whole document.
type RegistryRecord struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	DistTags    map[string]string          `json:"dist-tags"`
	Versions    map[string]json.RawMessage `json:"versions"`
	Time        Timestamps                 `json:"time"`
	Repository  RepositoryField            `json:"repository"`
	Maintainers []Maintainer               `json:"maintainers"`
}

// LatestTag returns the "latest" distribution tag, or "" if the registry has none.
func (r *RegistryRecord) LatestTag() string {
	return r.DistTags["latest"]
}

// Version decodes the metadata for tag. A missing or undecodable entry yields
// an empty VersionMetadata.
func (r *RegistryRecord) Version(tag string) VersionMetadata {
	var v VersionMetadata
	raw, ok := r.Versions[tag]
	if !ok {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return VersionMetadata{}
	}
	return v
}

// VersionMetadata holds the per-version fields used for the report.
type VersionMetadata struct {
	Description string          `json:"description"`
	Repository  RepositoryField `json:"repository"`
}

// Timestamps is the registry "time" object: version tags plus "created" and
// "modified", mapped to RFC 3339 strings. Entries that are not strings (such
// as the "unpublished" record) are ignored on lookup.
type Timestamps map[string]json.RawMessage

// Lookup parses the timestamp recorded under key.
func (t Timestamps) Lookup(key string) (time.Time, bool) {
	raw, ok := t[key]
	if !ok || key == "" {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// RepositoryShape tags which form the registry used for a repository field.
type RepositoryShape int

const (
	RepositoryAbsent RepositoryShape = iota
	RepositoryString
	RepositoryObject
)

// RepositoryField is either a bare URL string or an object with a url
// property. Anything else decodes as RepositoryAbsent.
type RepositoryField struct {
	Shape RepositoryShape
	URL   string
}

func (r *RepositoryField) UnmarshalJSON(b []byte) error {
	*r = RepositoryField{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			r.Shape, r.URL = RepositoryString, s
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		r.Shape = RepositoryObject
		var u string
		if raw, ok := obj["url"]; ok && json.Unmarshal(raw, &u) == nil {
			r.URL = u
		}
	}
	return nil
}

// Present reports whether the field carries a value the registry considers
// set. An empty string counts as unset; an object without a url does not.
func (r RepositoryField) Present() bool {
	switch r.Shape {
	case RepositoryString:
		return r.URL != ""
	case RepositoryObject:
		return true
	default:
		return false
	}
}

// MaintainerShape tags which form the registry used for a maintainer entry.
type MaintainerShape int

const (
	MaintainerUnknown MaintainerShape = iota
	MaintainerString
	MaintainerObject
)

// Maintainer is either a "Name <email> (url)" person string or an object
// with a name field.
type Maintainer struct {
	Shape MaintainerShape
	Name  string
	Email string
}

func (m *Maintainer) UnmarshalJSON(b []byte) error {
	*m = Maintainer{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			m.Shape = MaintainerString
			m.Name, m.Email = parsePerson(s)
		}
	case '{':
		var obj struct {
			Name  any `json:"name"`
			Email any `json:"email"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		m.Shape = MaintainerObject
		m.Name, _ = obj.Name.(string)
		m.Email, _ = obj.Email.(string)
	}
	return nil
}

// DisplayName is the name shown in reports.
func (m Maintainer) DisplayName() string {
	return strings.TrimSpace(m.Name)
}

// parsePerson splits the npm person shorthand "Name <email> (url)".
func parsePerson(s string) (name, email string) {
	name = s
	if i := strings.IndexAny(name, "<("); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(s, "<"); i >= 0 {
		if j := strings.Index(s[i:], ">"); j > 0 {
			email = s[i+1 : i+j]
		}
	}
	return strings.TrimSpace(name), email
}

// DownloadStats is the download counter response for one package.
type DownloadStats struct {
	Downloads int64  `json:"downloads"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Package   string `json:"package"`
}

// GitHubRepo identifies a repository on GitHub.
type GitHubRepo struct {
	Owner string
	Name  string
}

func (r GitHubRepo) String() string {
	return r.Owner + "/" + r.Name
}

// RepositorySummary is the best-effort activity data for a repository.
type RepositorySummary struct {
	OpenIssues int
	LastCommit *time.Time
}

// HealthReport is the resolver's output and the JSON body of a successful check.
// Version is omitted when the registry names no latest version.
type HealthReport struct {
	Name             string        `json:"name"`
	Version          string        `json:"version,omitempty"`
	Description      string        `json:"description"`
	LastPublish      *time.Time    `json:"lastPublish"`
	DaysSincePublish int           `json:"daysSincePublish"`
	WeeklyDownloads  int64         `json:"weeklyDownloads"`
	OpenIssues       int           `json:"openIssues"`
	LastCommit       *time.Time    `json:"lastCommit"`
	DaysSinceCommit  *int          `json:"daysSinceCommit"`
	Status           health.Status `json:"status"`
	RepoURL          *string       `json:"repoUrl"`
	NpmURL           string        `json:"npmUrl"`
	Maintainers      []string      `json:"maintainers"`
}
