package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/config"
	"github.com/alnah/go-ssohelp/internal/hints"
	"github.com/alnah/go-ssohelp/internal/server"
)

// runServeCmd serves the help page until ctx is canceled.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		printServeUsage(env.Stderr)
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(&f.common, env, func(c *config.Config) {
		if f.addr != "" {
			c.Server.Addr = f.addr
		}
		if f.workers > 0 {
			c.Browser.Workers = f.workers
		}
		if f.caCert != "" {
			c.Realm.CACertPath = f.caCert
		}
	})
	if err != nil {
		return err
	}
	logger, err := newLogger(&f.common, zapcore.InfoLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := libraryOptions(cfg, logger)
	if err != nil {
		return err
	}
	builder, err := ssohelp.NewBuilder(opts...)
	if err != nil {
		return err
	}

	srvOpts := []server.Option{server.WithLogger(logger)}
	if !f.noPDF {
		size := ssohelp.ResolvePoolSize(cfg.Browser.Workers)
		pool := ssohelp.NewBrowserPool(size, opts...)
		defer func() { _ = pool.Close() }()
		srvOpts = append(srvOpts, server.WithPool(pool))
		logger.Debug("PDF export enabled", zap.Int("pool_size", size))
	}

	if cfg.Realm.CACertPath == "" && cfg.Realm.CACertURL == "" && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: no CA certificate configured%s\n", hints.ForCACertNotConfigured())
	}

	srv, err := server.New(serverConfig(cfg), builder, srvOpts...)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// serverConfig returns the server settings described by cfg.
func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		Addr:       cfg.Server.Addr,
		Realm:      cfg.Realm.Name,
		Domains:    cfg.Realm.Domains,
		CACertPath: cfg.Realm.CACertPath,
		CACertURL:  cfg.Realm.CACertURL,
		Title:      cfg.Page.Title,
		Delegate:   cfg.Policy.Delegate,
		Locked:     cfg.Policy.Locked,
	}
}
