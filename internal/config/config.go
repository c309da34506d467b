// Package config loads client configuration from environment variables.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
)

// Config holds everything the client needs to talk to the booking backend
// and to keep credentials on disk.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Modu Booking"`

	// BaseURL is the booking backend, e.g. "https://api.modubooking.com".
	BaseURL string `env:"BOOKING_BASE_URL" envDefault:"http://localhost:8080"`

	// OAuthProvider is the external identity provider slug used in
	// /oauth/{provider}/... routes.
	OAuthProvider string `env:"OAUTH_PROVIDER" envDefault:"kakao"`

	// CallbackPort is the loopback port the OAuth redirect listener binds to.
	CallbackPort int `env:"OAUTH_CALLBACK_PORT" envDefault:"19523"`

	// CredentialDir is where the per-principal credential files live.
	CredentialDir string `env:"CREDENTIAL_DIR" envDefault:""`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	MaxRetries  int           `env:"HTTP_MAX_RETRIES" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] env.Parse")
	}
	return cfg, nil
}
