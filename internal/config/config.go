package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

type EmailConfig struct {
	SMTPServer     string   `mapstructure:"smtp_server"`
	SMTPPort       int      `mapstructure:"smtp_port"`
	Username       string   `mapstructure:"username"`
	Password       string   `mapstructure:"password"`
	To             []string `mapstructure:"to"`
	TemplatePath   string   `mapstructure:"template"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

type TVShowConfig struct {
	Name             string `mapstructure:"name"`
	APIURL           string `mapstructure:"api_url"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	RetryCount       int    `mapstructure:"retry_count"`
	RetryWaitSeconds int    `mapstructure:"retry_wait_seconds"`
}

type Config struct {
	DryRun    bool         `mapstructure:"dry_run"`
	StateFile string       `mapstructure:"state_file"`
	Email     EmailConfig  `mapstructure:"email"`
	TVShow    TVShowConfig `mapstructure:"tv_show"`
	Schedule  struct {
		CronSpec string `mapstructure:"cron_spec"`
	} `mapstructure:"schedule"`
}

// Load reads and validates the configuration file at path. Nothing beyond
// the file itself is touched; in particular no network calls happen here.
func Load(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("state_file", "./latest_episode.json")
	v.SetDefault("email.timeout_seconds", 30)
	v.SetDefault("tv_show.timeout_seconds", 15)
	v.SetDefault("tv_show.retry_count", 3)
	v.SetDefault("tv_show.retry_wait_seconds", 5)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Email.SMTPServer == "" {
		return cfg, fmt.Errorf("critical config: email.smtp_server is not set")
	}
	if cfg.Email.SMTPPort <= 0 {
		return cfg, fmt.Errorf("critical config: email.smtp_port is not set")
	}
	if cfg.Email.Username == "" {
		return cfg, fmt.Errorf("critical config: email.username is not set")
	}
	if cfg.Email.Password == "" {
		return cfg, fmt.Errorf("critical config: email.password is not set")
	}
	if len(cfg.Email.To) == 0 {
		return cfg, fmt.Errorf("critical config: no recipients in 'email.to' list")
	}
	if cfg.TVShow.Name == "" {
		return cfg, fmt.Errorf("critical config: tv_show.name is not set")
	}
	if cfg.TVShow.APIURL == "" {
		return cfg, fmt.Errorf("critical config: tv_show.api_url is not set")
	}
	u, err := url.Parse(cfg.TVShow.APIURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return cfg, fmt.Errorf("critical config: tv_show.api_url %q is not a valid http(s) URL", cfg.TVShow.APIURL)
	}

	return cfg, nil
}
