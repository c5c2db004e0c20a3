package main

import (
	"errors"
	"fmt"

	"github.com/alnah/go-ssohelp/internal/browserpolicy"
	"github.com/alnah/go-ssohelp/internal/config"
	"github.com/alnah/go-ssohelp/internal/hints"
)

// runPolicyCmd prints browser settings that trust the realm domains.
func runPolicyCmd(args []string, env *Environment) error {
	f, positional, err := parsePolicyFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		printPolicyUsage(env.Stderr)
		return fmt.Errorf("%w: policy takes exactly one format", ErrUsage)
	}

	cfg, err := loadConfig(&f.common, env, func(c *config.Config) {
		if f.delegate {
			c.Policy.Delegate = true
		}
		if f.locked {
			c.Policy.Locked = true
		}
	})
	if err != nil {
		return err
	}

	p, err := browserpolicy.New(cfg.Realm.Domains, cfg.Policy.Delegate, cfg.Policy.Locked)
	if err != nil {
		if errors.Is(err, browserpolicy.ErrNoDomains) {
			return fmt.Errorf("%w%s", err, hints.ForMissingDomain())
		}
		return err
	}

	switch format := positional[0]; format {
	case "firefox":
		return writePolicy(env, p.FirefoxPolicies)
	case "chrome":
		return writePolicy(env, p.ChromePolicies)
	case "chrome-flag":
		fmt.Fprintln(env.Stdout, p.ChromeFlag())
	case "about-config":
		for _, pref := range p.FirefoxPrefs() {
			fmt.Fprintf(env.Stdout, "%s = %s\n", pref.Name, pref.Value)
		}
	default:
		printPolicyUsage(env.Stderr)
		return fmt.Errorf("%w: unknown policy format %q", ErrUsage, format)
	}
	return nil
}

func writePolicy(env *Environment, render func() ([]byte, error)) error {
	data, err := render()
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(data)
	return err
}
