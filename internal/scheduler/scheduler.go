package scheduler

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"mihari/internal/checker"
	"mihari/internal/config"
	"mihari/internal/mailer"
	"mihari/internal/state"
	"mihari/internal/tvmaze"
	"mihari/internal/util"

	"github.com/robfig/cron/v3"
)

const scheduleTagText = "[SCHEDULE]"

// Process exit codes, one per error kind.
const (
	ExitOK     = 0
	ExitConfig = 1
	ExitFetch  = 2
	ExitNotify = 3
)

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, checker.ErrFetch):
		return ExitFetch
	case errors.Is(err, checker.ErrNotify):
		return ExitNotify
	default:
		return ExitConfig
	}
}

func runCheck(cfg config.Config, client *tvmaze.Client, store *state.Store, m *mailer.Mailer, isScheduledRun bool) (bool, error) {
	checkLogger := log.Default()
	if isScheduledRun {
		// Scheduled runs stay quiet unless something happened; detail
		// lines are re-reported below when they matter.
		origClient := client.GetLogger()
		client.SetLogger(tvmaze.NilLogger)
		store.SetLogger(tvmaze.NilLogger)
		m.SetLogger(tvmaze.NilLogger)
		defer func() {
			client.SetLogger(origClient)
			store.SetLogger(log.Default())
			m.SetLogger(log.Default())
		}()
		checkLogger = tvmaze.NilLogger
	}

	notified, err := checker.Run(cfg.TVShow.Name, client, store, m, cfg.DryRun, checkLogger)
	if err != nil {
		log.Printf("  %s %v", util.RedBold("!!! ERROR [CHECK]"), err)
	}
	return notified, err
}

// Run executes in single-run mode when no cron spec is configured,
// returning a process exit code. With a cron spec it performs one verbose
// initial check and then keeps checking on schedule, never returning.
func Run(cfg config.Config, client *tvmaze.Client, store *state.Store, m *mailer.Mailer) int {
	cronSpec := cfg.Schedule.CronSpec
	schedulerTagColored := util.YellowBold(scheduleTagText)

	jobFuncWrapper := func() {
		runStartTime := time.Now()
		notified, err := runCheck(cfg, client, store, m, true)

		if !notified && err == nil {
			dayWithSuffix := strconv.Itoa(runStartTime.Day()) + util.GetOrdinalSuffix(runStartTime.Day())
			dateTimePart := fmt.Sprintf("%s %s %d at %s",
				dayWithSuffix, runStartTime.Month().String(), runStartTime.Year(), runStartTime.Format("15:04"))
			durationPart := fmt.Sprintf("took %s", time.Since(runStartTime).Round(time.Millisecond).String())
			detailsInsideParentheses := util.Gray(fmt.Sprintf("%s, %s", dateTimePart, durationPart))

			log.Printf("%s No new %s episode, all quiet. %s%s%s",
				schedulerTagColored,
				cfg.TVShow.Name,
				util.Gray("("),
				detailsInsideParentheses,
				util.Gray(")"))
			return
		}

		log.Printf("\n%s ----- Scheduled Run Finished (%s, Duration: %s) -----",
			schedulerTagColored,
			time.Now().Format("2006-01-02 15:04:05"),
			time.Since(runStartTime).Round(time.Millisecond))
		if err != nil {
			log.Printf("%s   Note: Scheduled run completed with %s.", schedulerTagColored, util.Yellow("issues"))
		} else if notified {
			log.Printf("%s   Notification sent for %s.", schedulerTagColored, cfg.TVShow.Name)
		}
		log.Println()
	}

	if cronSpec == "" {
		log.Println()
		log.Println(util.BlueBold("--- Single Run Mode ---"))
		_, err := runCheck(cfg, client, store, m, false)
		return exitCodeFor(err)
	}

	log.Println(util.BlueBold("\n--- Scheduler Mode ---"))
	log.Printf("%s Cron Spec: %s.", schedulerTagColored, util.Yellow(cronSpec))
	log.Printf("%s Performing initial check (verbose)...", schedulerTagColored)
	_, _ = runCheck(cfg, client, store, m, false)

	log.Printf("%s Scheduler active. Waiting for next run...", schedulerTagColored)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cronSpec, jobFuncWrapper)
	if err != nil {
		log.Fatalf("%s Failed to add cron job: %v", util.RedBold("!!! FATAL"), err)
	}
	c.Start()
	select {}
}
