package state

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"mihari/internal/episode"
	"mihari/internal/util"

	"github.com/google/renameio/v2"
)

const airDateLayout = "2006-01-02"

// record is the on-disk shape: small JSON so the file stays readable when
// debugging by hand.
type record struct {
	Title   string `json:"title"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	AirDate string `json:"airdate"`
}

// Store persists the identity of the last episode a notification went out
// for. The file is owned exclusively by this process between runs.
type Store struct {
	path   string
	logger *log.Logger
}

func NewStore(path string, appLogger *log.Logger) *Store {
	if appLogger == nil {
		appLogger = log.Default()
	}
	return &Store{path: path, logger: appLogger}
}

func (s *Store) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s.logger = logger
}

// Load returns the previously persisted episode, or nil when no usable
// state exists. A missing, unreadable, or corrupt file means first-run
// semantics, never a fatal error.
func (s *Store) Load() (*episode.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("  %s State file %s unreadable (%v), treating as first run.", util.Yellow("[STATE]"), s.path, err)
		}
		return nil, nil
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Printf("  %s State file %s corrupt (%v), treating as first run.", util.Yellow("[STATE]"), s.path, err)
		return nil, nil
	}
	prev := episode.Record{
		Season: rec.Season,
		Number: rec.Episode,
		Title:  rec.Title,
	}
	if rec.AirDate != "" {
		if aired, err := time.Parse(airDateLayout, rec.AirDate); err == nil {
			prev.AirDate = aired
		}
	}
	return &prev, nil
}

// Save atomically replaces the state file with ep's identity. renameio
// writes to a temp file, fsyncs, and renames, so a crash mid-write never
// leaves a half-written state file behind.
func (s *Store) Save(ep episode.Record) error {
	rec := record{
		Title:   ep.Title,
		Season:  ep.Season,
		Episode: ep.Number,
		AirDate: ep.AirDate.Format(airDateLayout),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := renameio.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing state file %s: %w", s.path, err)
	}
	s.logger.Printf("  %s Updated %s with %s.", util.Green("[STATE]"), s.path, ep.Code())
	return nil
}
