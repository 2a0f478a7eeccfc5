// internal/health/health.go
package health

import (
	"math"
	"time"
)

// Status is the maintenance classification of a package.
type Status string

const (
	Alive   Status = "alive"
	Slowing Status = "slowing"
	Dead    Status = "dead"
)

const (
	// AliveWithinDays is the longest inactivity, inclusive, still classified Alive.
	AliveWithinDays = 90
	// SlowingWithinDays is the longest inactivity, inclusive, still classified Slowing.
	SlowingWithinDays = 365

	// UnknownPublishDays stands in for a package with no recorded publish time.
	// It is a policy choice that lands such packages in Dead.
	UnknownPublishDays = 999
)

// Classify maps the days since the last publish and, when known, the days
// since the last commit to a Status. The more recent activity wins.
func Classify(daysSincePublish int, daysSinceCommit *int) Status {
	inactive := daysSincePublish
	if daysSinceCommit != nil && *daysSinceCommit < inactive {
		inactive = *daysSinceCommit
	}

	switch {
	case inactive <= AliveWithinDays:
		return Alive
	case inactive <= SlowingWithinDays:
		return Slowing
	default:
		return Dead
	}
}

// DaysSince returns the number of whole days between t and now, rounded down.
func DaysSince(now, t time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}
