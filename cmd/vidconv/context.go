package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vidconv/vidconv/internal/api"
	"github.com/vidconv/vidconv/internal/config"
	"github.com/vidconv/vidconv/internal/logging"
	"github.com/vidconv/vidconv/internal/session"
)

// commandContext lazily wires config, the session store, and the API client
// so that commands share one instance of each.
type commandContext struct {
	configFlag *string

	once   sync.Once
	cfg    *config.Config
	store  session.Store
	logger *logging.Logger
	err    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}

		cfg, err := config.Load(path)
		if err != nil {
			c.err = err
			return
		}

		logger, err := logging.NewConsoleLogger(cfg.Log.Level)
		if err != nil {
			c.err = err
			return
		}

		store, err := session.NewFileStore(cfg.Session.Path)
		if err != nil {
			c.err = err
			return
		}

		c.cfg = cfg
		c.store = store
		c.logger = logger
	})
	return c.err
}

func (c *commandContext) config() (*config.Config, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.cfg, nil
}

func (c *commandContext) sessionStore() (session.Store, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return c.store, nil
}

func (c *commandContext) client() (*api.Client, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	return api.New(c.cfg.API, c.store, c.logger), nil
}

// withClient runs fn with a ready API client. Operations that fail because
// no session token is stored get a login hint appended.
func (c *commandContext) withClient(fn func(*api.Client) error) error {
	client, err := c.client()
	if err != nil {
		return err
	}

	err = fn(client)
	if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindAuth && apiErr.Message == "No token found" {
		return fmt.Errorf("%s; run `vidconv login`", apiErr.Message)
	}
	return err
}
