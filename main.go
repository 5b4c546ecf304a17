package main

import (
	"log"
	"os"

	"mihari/internal/config"
	"mihari/internal/mailer"
	"mihari/internal/scheduler"
	"mihari/internal/state"
	"mihari/internal/tvmaze"
	"mihari/internal/util"
)

func main() {
	log.SetFlags(0)

	configPath := "./config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	appConfig, err := config.Load(configPath)
	if err != nil {
		log.Printf("%s %v", util.RedBold("!!! FATAL [CONFIG]"), err)
		os.Exit(scheduler.ExitConfig)
	}

	log.Println(util.BlueBold("--- Episode Airing Monitor (Mihari) ---"))
	log.Printf("Watching: %s", util.Blue(appConfig.TVShow.Name))
	if appConfig.DryRun {
		log.Println(util.YellowBold(" *** DRY RUN MODE ENABLED (via config) ***"))
	}

	appBaseLogger := log.Default()
	tvClient := tvmaze.NewClient(appConfig, appBaseLogger)
	stateStore := state.NewStore(appConfig.StateFile, appBaseLogger)

	notifier, err := mailer.New(appConfig, appBaseLogger)
	if err != nil {
		log.Printf("%s %v", util.RedBold("!!! FATAL [CONFIG]"), err)
		os.Exit(scheduler.ExitConfig)
	}

	os.Exit(scheduler.Run(appConfig, tvClient, stateStore, notifier))
}
