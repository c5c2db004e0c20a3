package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-ssohelp"
	"github.com/alnah/go-ssohelp/internal/config"
	"github.com/alnah/go-ssohelp/internal/hints"
)

// loadConfig resolves configuration for a command.
// Priority: CLI flags > env vars > config file > defaults. override, if
// non-nil, applies command-specific flags before validation.
func loadConfig(f *commonFlags, env *Environment, override func(*config.Config)) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if !f.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	name := f.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(userConfigPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	applyCommonFlags(f, cfg)
	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// userConfigPaths lists where a named config may be created.
func userConfigPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-ssohelp", name+".yaml")}
}

// newLogger builds the CLI logger on stderr. base is the level used when
// neither --verbose nor --quiet is set.
func newLogger(f *commonFlags, base zapcore.Level) (*zap.Logger, error) {
	var zc zap.Config
	if f.verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(base)
	}
	if f.quiet {
		zc.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}

	zc.Encoding = "console"
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// libraryOptions translates cfg into builder and browser options.
// Both share one asset loader.
func libraryOptions(cfg *config.Config, logger *zap.Logger) ([]ssohelp.Option, error) {
	timeout, err := cfg.Browser.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []ssohelp.Option{
		ssohelp.WithTimeout(timeout),
		ssohelp.WithLogger(logger),
		ssohelp.WithLocale(cfg.Page.Locale),
		ssohelp.WithManifest(cfg.Bootstrap.Manifest()),
		ssohelp.WithSubstitution(cfg.Bootstrap.Substitution),
	}
	if cfg.Page.Name != "" {
		opts = append(opts, ssohelp.WithPageName(cfg.Page.Name))
	}
	if cfg.Assets.BasePath != "" {
		loader, err := ssohelp.NewAssetLoader(cfg.Assets.BasePath)
		if err != nil {
			return nil, fmt.Errorf("%w%s", err, hints.ForAssetsDir(ssohelp.Locales()))
		}
		opts = append(opts, ssohelp.WithAssetLoader(loader))
	}
	return opts, nil
}

// pageInputFor returns the render input described by cfg.
func pageInputFor(cfg *config.Config) ssohelp.PageInput {
	return ssohelp.PageInput{
		Realm:     cfg.Realm.Name,
		Domain:    cfg.Realm.Domain(),
		CACertURL: cfg.Realm.CACertURL,
		Title:     cfg.Page.Title,
	}
}

// withBrowserHint appends a hint to browser connection errors.
func withBrowserHint(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ssohelp.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, ssohelp.ErrPageLoad), errors.Is(err, ssohelp.ErrPDFGeneration):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	default:
		return err
	}
}
