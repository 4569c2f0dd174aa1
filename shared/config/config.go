// shared/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// GameshowConfig holds all configuration for the gameshow service.
// It is loaded once at startup from environment variables and treated as
// read-only afterwards.
type GameshowConfig struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":3000"` // Address for the HTTP server (e.g., ":3000")

	// Slack credentials and endpoints.
	VerificationToken  string `env:"VERIFICATION_TOKEN"`                                    // Shared secret checked on every inbound webhook
	BotUserAccessToken string `env:"BOT_USER_ACCESS_TOKEN"`                                 // Bearer credential for outbound Web API calls
	SlackAPIBaseURL    string `env:"SLACK_API_BASE_URL" envDefault:"https://slack.com/api"` // Overridable so tests can point at a local server

	// MongoDB settings for the game store.
	MongoDBConnStr         string `env:"MONGODB_CONN_STR" envDefault:"mongodb://localhost:27017"`
	MongoDBDatabase        string `env:"MONGODB_DATABASE" envDefault:"gameshow"`
	MongoDBGamesCollection string `env:"MONGODB_GAMES_COLLECTION" envDefault:"games"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"` // Grace period for in-flight requests on SIGTERM
}

// LoadGameshowConfig loads and validates the service configuration from the
// environment.
func LoadGameshowConfig() (*GameshowConfig, error) {
	cfg, err := env.ParseAs[GameshowConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.VerificationToken == "" {
		return nil, fmt.Errorf("VERIFICATION_TOKEN must be set")
	}
	if cfg.BotUserAccessToken == "" {
		return nil, fmt.Errorf("BOT_USER_ACCESS_TOKEN must be set")
	}

	return &cfg, nil
}
