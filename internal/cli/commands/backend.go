package commands

import (
	"fmt"

	"github.com/kutbudev/decktree/internal/api"
	"github.com/kutbudev/decktree/internal/app"
	userconfig "github.com/kutbudev/decktree/internal/config"
	"github.com/kutbudev/decktree/internal/deck"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/config"
	"github.com/urfave/cli/v2"
)

// openBackend returns the remote client when a server URL is given by flag
// or saved in ~/.decktree/config.json, otherwise a local service over the
// configured database. The returned func releases it.
func openBackend(c *cli.Context) (deck.Backend, func(), error) {
	serverURL := c.String("server")
	if serverURL == "" {
		ucfg, err := userconfig.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load user config: %w", err)
		}
		serverURL = ucfg.ServerURL
	}
	if serverURL != "" {
		return api.NewClient(serverURL), func() {}, nil
	}

	cfg, err := config.LoadFrom(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a, err := app.New(c.Context, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a.Service, func() {
		_ = a.Close()
		log.Sync()
	}, nil
}

// withBackend runs fn against the backend chosen by openBackend.
func withBackend(fn func(c *cli.Context, b deck.Backend) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		b, release, err := openBackend(c)
		if err != nil {
			return err
		}
		defer release()
		return fn(c, b)
	}
}
