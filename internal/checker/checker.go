package checker

import (
	"errors"
	"fmt"
	"log"

	"mihari/internal/episode"
	"mihari/internal/util"
)

// Error kinds for exit-code mapping. Fetch and notify failures are fatal
// for the run; a failed state write is only warned about because the
// notification already reached the recipients.
var (
	ErrFetch  = errors.New("episode fetch failed")
	ErrNotify = errors.New("notification failed")
)

type Fetcher interface {
	LatestAired() (episode.Record, error)
}

type Store interface {
	Load() (*episode.Record, error)
	Save(episode.Record) error
}

type Notifier interface {
	Send(ep episode.Record, dryRun bool) error
}

// Run performs one check: load the last-notified state, fetch the latest
// aired episode, notify on change, persist. Returns whether a
// notification went out. State is only written after a successful send,
// so a failed send leaves the previous value in place and the next
// scheduled run retries the same episode.
func Run(show string, fetcher Fetcher, store Store, notifier Notifier, dryRun bool, logger *log.Logger) (bool, error) {
	if logger == nil {
		logger = log.Default()
	}

	prev, err := store.Load()
	if err != nil {
		// Load is contractually tolerant; an error here still only
		// means first-run semantics.
		logger.Printf("  %s State load: %v (treating as first run).", util.Yellow("[STATE]"), err)
		prev = nil
	}

	latest, err := fetcher.LatestAired()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if prev != nil && prev.SameIdentity(latest) {
		logger.Printf("  %s No new episode for %s (still %s).", util.Green("[CHECK]"), show, latest.Code())
		return false, nil
	}

	if prev == nil {
		logger.Printf("  %s First run, no prior state. Latest aired is %s.", util.Cyan("[CHECK]"), util.GreenBold(latest.Code()))
	} else {
		logger.Printf("  %s NEW episode for %s: %s (was %s).",
			util.CyanBold("[CHECK]"), show, util.GreenBold(latest.Code()), prev.Code())
	}
	logger.Printf("  %s Title: %s | Airdate: %s", util.Cyan("[CHECK]"), latest.Title, latest.AirDate.Format("2006-01-02"))

	if err := notifier.Send(latest, dryRun); err != nil {
		return false, fmt.Errorf("%w: %w", ErrNotify, err)
	}

	if dryRun {
		logger.Printf("  %s State not persisted. %s", util.Yellow("[STATE]"), util.YellowBold("(DRY RUN)"))
		return true, nil
	}

	if err := store.Save(latest); err != nil {
		logger.Printf("  %s State write failed: %v. Next run may re-notify %s.", util.Yellow("[STATE WARN]"), err, latest.Code())
	}
	return true, nil
}
