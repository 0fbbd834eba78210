package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the one explicit configuration object handed to every
// component. No package reads the environment on its own; credentials are
// overlaid here in Load.
type Config struct {
	StorePath  string        `yaml:"store_path"`
	AliasFile  string        `yaml:"alias_file"`
	RunTimeout time.Duration `yaml:"run_timeout"`

	Pacing  Pacing  `yaml:"pacing"`
	Browser Browser `yaml:"browser"`
	Sources Sources `yaml:"sources"`
	Media   Media   `yaml:"media"`
}

// Pacing controls the politeness delay and retry budget for detail fetches.
type Pacing struct {
	PerSecond float64 `yaml:"per_second"`
	Retries   uint64  `yaml:"retries"`
}

// Browser bounds every scripted browser session.
type Browser struct {
	MaxIterations int           `yaml:"max_iterations"`
	Wait          time.Duration `yaml:"wait"`
}

// Sources carries per-adapter settings. Base URLs are externally supplied
// so tests can point adapters at fixtures.
type Sources struct {
	Ticketmaster    Ticketmaster `yaml:"ticketmaster"`
	Whelans         Site         `yaml:"whelans"`
	VicarStreet     Site         `yaml:"vicarstreet"`
	AbbeyTheatre    Site         `yaml:"abbeytheatre"`
	Lighthouse      Site         `yaml:"lighthouse"`
	EntertainmentIE Site         `yaml:"entertainmentie"`
}

// Ticketmaster configures the structured API source.
type Ticketmaster struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	City     string `yaml:"city"`
	PageSize int    `yaml:"page_size"`
}

// Site configures an HTML source.
type Site struct {
	BaseURL string `yaml:"base_url"`
}

// Media configures the metadata API used by the enrichment job.
type Media struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Load reads a YAML config file, applies defaults, and overlays credential
// environment variables (TICKETMASTER_API_KEY, MEDIA_API_KEY).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a Config with the built-in defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.StorePath == "" {
		c.StorePath = "dublin-events.db"
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 15 * time.Minute
	}
	if c.Pacing.PerSecond <= 0 {
		c.Pacing.PerSecond = 0.5
	}
	if c.Browser.MaxIterations <= 0 {
		c.Browser.MaxIterations = 5
	}
	if c.Browser.Wait <= 0 {
		c.Browser.Wait = 2 * time.Second
	}
	if c.Sources.Ticketmaster.BaseURL == "" {
		c.Sources.Ticketmaster.BaseURL = "https://app.ticketmaster.com"
	}
	if c.Sources.Ticketmaster.City == "" {
		c.Sources.Ticketmaster.City = "Dublin"
	}
	if c.Sources.Ticketmaster.PageSize == 0 {
		c.Sources.Ticketmaster.PageSize = 100
	}
	if c.Sources.Whelans.BaseURL == "" {
		c.Sources.Whelans.BaseURL = "https://www.whelanslive.com"
	}
	if c.Sources.VicarStreet.BaseURL == "" {
		c.Sources.VicarStreet.BaseURL = "https://www.vicarstreet.com"
	}
	if c.Sources.AbbeyTheatre.BaseURL == "" {
		c.Sources.AbbeyTheatre.BaseURL = "https://www.abbeytheatre.ie"
	}
	if c.Sources.Lighthouse.BaseURL == "" {
		c.Sources.Lighthouse.BaseURL = "https://lighthousecinema.ie"
	}
	if c.Sources.EntertainmentIE.BaseURL == "" {
		c.Sources.EntertainmentIE.BaseURL = "https://entertainment.ie"
	}
	if c.Media.BaseURL == "" {
		c.Media.BaseURL = "https://api.themoviedb.org"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TICKETMASTER_API_KEY"); v != "" {
		c.Sources.Ticketmaster.APIKey = v
	}
	if v := os.Getenv("MEDIA_API_KEY"); v != "" {
		c.Media.APIKey = v
	}
}
