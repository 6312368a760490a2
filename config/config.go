// Package config loads the desk client configuration from a yaml file, with
// flag fallbacks for quick runs.
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPollInterval is the listing feed poll period.
	DefaultPollInterval = 10 * time.Second
	// DefaultChartPollInterval is the single-symbol chart poll period.
	DefaultChartPollInterval = 5 * time.Second

	defaultListenAddr  = "127.0.0.1:8742"
	defaultChartSymbol = "btcinr"
	defaultSessionFile = ".mkfrx/session.json"
	defaultJournalDir  = "./wal/intents"
)

// Config is the resolved desk client configuration.
type Config struct {
	BackendURL        string        `yaml:"backend_url"`
	ListenAddr        string        `yaml:"listen_addr"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	ChartPollInterval time.Duration `yaml:"chart_poll_interval"`
	ChartSymbol       string        `yaml:"chart_symbol"`
	SessionFile       string        `yaml:"session_file"`
	JournalDir        string        `yaml:"journal_dir"`
}

// Get resolves configuration from --config yaml when given, flags otherwise.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	backend := flag.String("backend", "", "MKfrx backend base URL, example: https://api.mkfrx.example")
	listen := flag.String("listen", defaultListenAddr, "local markets view listen address")
	poll := flag.Duration("pollinterval", DefaultPollInterval, "listing feed poll interval")
	chartPoll := flag.Duration("chartpollinterval", DefaultChartPollInterval, "chart feed poll interval")
	chartSymbol := flag.String("chartsymbol", defaultChartSymbol, "initially charted symbol")
	flag.Parse()

	if *configPath != "" {
		return Load(*configPath)
	}

	cfg := Config{
		BackendURL:        *backend,
		ListenAddr:        *listen,
		PollInterval:      *poll,
		ChartPollInterval: *chartPoll,
		ChartSymbol:       *chartSymbol,
	}
	return cfg, cfg.Normalize()
}

// Load reads and validates a yaml config file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml config %s: %w", path, err)
	}
	return cfg, cfg.Normalize()
}

// Normalize fills defaults and validates the result.
func (c *Config) Normalize() error {
	c.applyDefaults()
	return c.validate()
}

// Save writes the config as yaml, used by the first-run wizard.
func (c Config) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ChartPollInterval <= 0 {
		c.ChartPollInterval = DefaultChartPollInterval
	}
	if c.ChartSymbol == "" {
		c.ChartSymbol = defaultChartSymbol
	}
	if c.SessionFile == "" {
		c.SessionFile = defaultSessionFile
	}
	if c.JournalDir == "" {
		c.JournalDir = defaultJournalDir
	}
}

func (c Config) validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url is required")
	}
	if _, err := url.ParseRequestURI(c.BackendURL); err != nil {
		return fmt.Errorf("invalid backend_url %q: %w", c.BackendURL, err)
	}
	return nil
}
