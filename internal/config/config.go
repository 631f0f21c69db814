package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is the service configuration, loaded from the environment.
type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	AppURL   string `envconfig:"APP_URL" default:"http://localhost:3000"`
	RedisURL string `envconfig:"REDIS_URL" default:""`

	SpotifyClientID string `envconfig:"SPOTIFY_CLIENT_ID" required:"true"`
	RedirectURL     string `envconfig:"SPOTIFY_REDIRECT_URL" default:"http://localhost:3000/auth/callback"`
	AuthorizeURL    string `envconfig:"SPOTIFY_AUTHORIZE_URL" default:"https://accounts.spotify.com/authorize"`
	TokenURL        string `envconfig:"SPOTIFY_TOKEN_URL" default:"https://accounts.spotify.com/api/token"`
	APIBaseURL      string `envconfig:"SPOTIFY_API_URL" default:"https://api.spotify.com/v1"`

	StateSecret string `envconfig:"STATE_SECRET" required:"true"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
