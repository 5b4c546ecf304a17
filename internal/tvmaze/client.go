package tvmaze

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"mihari/internal/config"
	"mihari/internal/episode"
	"mihari/internal/util"

	"github.com/go-resty/resty/v2"
)

var NilLogger = log.New(io.Discard, "", 0)

// ErrNoneAired is returned when the API lists the show but no episode has
// an air date on or before today.
var ErrNoneAired = errors.New("no aired episode in listing")

const airDateLayout = "2006-01-02"

// showResponse mirrors the TVMaze singlesearch document with embedded
// episodes. Only the fields this tool reads are declared; everything else
// in the payload is ignored.
type showResponse struct {
	Name     string `json:"name"`
	Embedded struct {
		Episodes []wireEpisode `json:"episodes"`
	} `json:"_embedded"`
}

type wireEpisode struct {
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
	AirDate string `json:"airdate"`
	Summary string `json:"summary"`
}

// toRecord is the single translation point between the API's field names
// and the episode model. Episodes without a parseable air date are
// dropped here so the selection logic never sees them.
func (w wireEpisode) toRecord() (episode.Record, bool) {
	if w.AirDate == "" {
		return episode.Record{}, false
	}
	aired, err := time.Parse(airDateLayout, w.AirDate)
	if err != nil {
		return episode.Record{}, false
	}
	return episode.Record{
		Season:  w.Season,
		Number:  w.Number,
		Title:   w.Name,
		AirDate: aired,
		Summary: w.Summary,
	}, true
}

type Client struct {
	resty  *resty.Client
	apiURL string
	logger *log.Logger
}

func NewClient(cfg config.Config, appLogger *log.Logger) *Client {
	if appLogger == nil {
		appLogger = log.Default()
	}
	restyClient := resty.New().
		SetTimeout(time.Duration(cfg.TVShow.TimeoutSeconds) * time.Second).
		SetRetryCount(cfg.TVShow.RetryCount).
		SetRetryWaitTime(time.Duration(cfg.TVShow.RetryWaitSeconds) * time.Second).
		OnError(func(req *resty.Request, err error) {
			errMsg := fmt.Sprintf("API Request Error. URL: %s, Method: %s", req.URL, req.Method)
			if err != nil {
				log.Printf("  %s %s | Error: %v", util.RedBold("[TVMAZE HTTP ERR]"), errMsg, err.Error())
				if v, ok := err.(*resty.ResponseError); ok && v.Response != nil {
					if len(v.Response.Body()) > 0 && len(v.Response.Body()) < 500 {
						log.Printf("  %s Response Body: %s", util.RedBold("[TVMAZE HTTP ERR]"), string(v.Response.Body()))
					}
				}
			} else {
				log.Printf("  %s %s | Unknown Error (err is nil)", util.RedBold("[TVMAZE HTTP ERR]"), errMsg)
			}
		})
	return &Client{resty: restyClient, apiURL: cfg.TVShow.APIURL, logger: appLogger}
}

func (c *Client) GetLogger() *log.Logger {
	if c.logger == nil {
		return NilLogger
	}
	return c.logger
}

func (c *Client) SetLogger(logger *log.Logger) {
	if logger == nil {
		c.logger = NilLogger
	} else {
		c.logger = logger
	}
}

// LatestAired fetches the show listing and returns the most recently
// aired episode as of today.
func (c *Client) LatestAired() (episode.Record, error) {
	return c.LatestAiredAt(time.Now().UTC())
}

// LatestAiredAt is LatestAired with an explicit "today", so the aired
// cutoff can be pinned.
func (c *Client) LatestAiredAt(today time.Time) (episode.Record, error) {
	var show showResponse
	resp, err := c.resty.R().SetResult(&show).Get(c.apiURL)
	if err != nil {
		return episode.Record{}, fmt.Errorf("failed to request episode listing: %w", err)
	}
	if !resp.IsSuccess() {
		return episode.Record{}, fmt.Errorf("episode listing API error. Status: %s, Body: %s", resp.Status(), resp.String())
	}
	if len(show.Embedded.Episodes) == 0 {
		return episode.Record{}, fmt.Errorf("episode listing response has no embedded episodes")
	}

	records := make([]episode.Record, 0, len(show.Embedded.Episodes))
	skipped := 0
	for _, wire := range show.Embedded.Episodes {
		rec, ok := wire.toRecord()
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	currentLogger := c.GetLogger()
	if skipped > 0 {
		currentLogger.Printf("  %s %d episode(s) without a usable air date skipped.", util.Yellow("[TVMAZE]"), skipped)
	}

	latest, found := episode.LatestAired(records, today)
	if !found {
		return episode.Record{}, fmt.Errorf("%w: %d episode(s) listed, all future-dated", ErrNoneAired, len(records))
	}
	currentLogger.Printf("  %s Latest aired: %s %s (aired %s).",
		util.Cyan("[TVMAZE]"),
		util.Blue(latest.Code()),
		util.Blue(fmt.Sprintf("'%s'", latest.Title)),
		util.Yellow(latest.AirDate.Format(airDateLayout)))
	return latest, nil
}
