package episode_test

import (
	"testing"
	"time"

	"mihari/internal/episode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCode(t *testing.T) {
	assert.Equal(t, "S05E11", episode.Record{Season: 5, Number: 11}.Code())
	assert.Equal(t, "S23E04", episode.Record{Season: 23, Number: 4}.Code())
}

func TestSameIdentityIgnoresAirDate(t *testing.T) {
	a := episode.Record{Season: 5, Number: 11, AirDate: day("2026-08-29")}
	b := episode.Record{Season: 5, Number: 11, AirDate: day("2026-09-05"), Title: "re-air"}
	assert.True(t, a.SameIdentity(b))
	assert.False(t, a.SameIdentity(episode.Record{Season: 5, Number: 12}))
	assert.False(t, a.SameIdentity(episode.Record{Season: 6, Number: 11}))
}

func TestLatestAiredExcludesFutureEpisodes(t *testing.T) {
	records := []episode.Record{
		{Season: 5, Number: 10, AirDate: day("2026-08-01")},
		{Season: 5, Number: 11, AirDate: day("2026-08-29")},
		{Season: 5, Number: 12, AirDate: day("2026-09-12")},
	}
	latest, found := episode.LatestAired(records, day("2026-08-30"))
	require.True(t, found)
	assert.Equal(t, "S05E11", latest.Code())
}

func TestLatestAiredIncludesToday(t *testing.T) {
	records := []episode.Record{
		{Season: 1, Number: 1, AirDate: day("2026-08-30")},
	}
	latest, found := episode.LatestAired(records, day("2026-08-30"))
	require.True(t, found)
	assert.Equal(t, "S01E01", latest.Code())
}

func TestLatestAiredNoneAired(t *testing.T) {
	records := []episode.Record{
		{Season: 1, Number: 1, AirDate: day("2027-01-01")},
		{Season: 1, Number: 2},
	}
	_, found := episode.LatestAired(records, day("2026-08-30"))
	assert.False(t, found)

	_, found = episode.LatestAired(nil, day("2026-08-30"))
	assert.False(t, found)
}

func TestLatestAiredTieBreaksOnHighestSeasonEpisode(t *testing.T) {
	tests := []struct {
		name    string
		records []episode.Record
		want    string
	}{
		{
			name: "same date, higher episode number wins",
			records: []episode.Record{
				{Season: 5, Number: 11, AirDate: day("2026-08-29")},
				{Season: 5, Number: 10, AirDate: day("2026-08-29")},
			},
			want: "S05E11",
		},
		{
			name: "same date, higher season wins over higher number",
			records: []episode.Record{
				{Season: 6, Number: 1, AirDate: day("2026-08-29")},
				{Season: 5, Number: 22, AirDate: day("2026-08-29")},
			},
			want: "S06E01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, found := episode.LatestAired(tt.records, day("2026-08-30"))
			require.True(t, found)
			assert.Equal(t, tt.want, latest.Code())
		})
	}
}
