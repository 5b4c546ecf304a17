package episode

import (
	"fmt"
	"time"
)

// Record holds the fields of one episode as reported by the listing API.
type Record struct {
	Season  int
	Number  int
	Title   string
	AirDate time.Time
	Summary string
}

// Code renders the identity as "S05E11".
func (r Record) Code() string {
	return fmt.Sprintf("S%02dE%02d", r.Season, r.Number)
}

// SameIdentity reports whether two records refer to the same episode.
// Identity is the (season, number) pair; air date is informational only,
// so a re-air of an already-notified episode stays quiet.
func (r Record) SameIdentity(other Record) bool {
	return r.Season == other.Season && r.Number == other.Number
}

func (r Record) newerThan(other Record) bool {
	if !r.AirDate.Equal(other.AirDate) {
		return r.AirDate.After(other.AirDate)
	}
	if r.Season != other.Season {
		return r.Season > other.Season
	}
	return r.Number > other.Number
}

// LatestAired selects the episode with the most recent air date that is on
// or before today. Future-scheduled and undated episodes are never
// candidates. Episodes sharing the latest air date are broken by the
// highest (season, number) pair. The second return is false when nothing
// has aired yet.
func LatestAired(records []Record, today time.Time) (Record, bool) {
	day := today.Truncate(24 * time.Hour)
	var latest Record
	found := false
	for _, rec := range records {
		if rec.AirDate.IsZero() || rec.AirDate.After(day) {
			continue
		}
		if !found || rec.newerThan(latest) {
			latest = rec
			found = true
		}
	}
	return latest, found
}
