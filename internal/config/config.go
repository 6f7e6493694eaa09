// Package config reads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/shreyatrivedi/portfolio/internal/contact"
)

// Config aggregates runtime configuration for the site.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	GinMode   string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	ContentDB string `env:"CONTENT_DB" envDefault:":memory:"`

	Contact ContactConfig
	SMTP    SMTPConfig
}

// ContactConfig controls the contact dialog and its relay.
type ContactConfig struct {
	Relay         string        `env:"RELAY" envDefault:"formspree"`
	FormEndpoint  string        `env:"FORM_ENDPOINT" envDefault:"https://formspree.io/f/mnnbqega"`
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"10s"`
	CancelPolicy  string        `env:"CANCEL_POLICY" envDefault:"keep"`
	DraftTTL      time.Duration `env:"DRAFT_TTL" envDefault:"30m"`
}

// SMTPConfig is used when Relay is "smtp".
type SMTPConfig struct {
	Host    string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port    string `env:"SMTP_PORT" envDefault:"587"`
	User    string `env:"SMTP_USER"`
	Pass    string `env:"SMTP_PASS"`
	ToEmail string `env:"TO_EMAIL"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Contact.Relay {
	case "formspree", "smtp":
	default:
		return fmt.Errorf("RELAY must be formspree or smtp, got %q", c.Contact.Relay)
	}
	if c.Contact.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive, got %s", c.Contact.SubmitTimeout)
	}
	if c.Contact.DraftTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL must be positive, got %s", c.Contact.DraftTTL)
	}
	if _, err := contact.ParseCancelPolicy(c.Contact.CancelPolicy); err != nil {
		return fmt.Errorf("CANCEL_POLICY: %w", err)
	}
	return nil
}

// CancelPolicy returns the parsed CANCEL_POLICY.
func (c *Config) CancelPolicy() contact.CancelPolicy {
	p, _ := contact.ParseCancelPolicy(c.Contact.CancelPolicy)
	return p
}
