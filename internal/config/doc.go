// Package config provides loading and environment overlay for the
// rollingfile command. It exposes a Default() baseline, TOML file loading
// and helpers that turn a Config into a writer configuration and rollover
// condition.
//
// Example:
//
//	cfg, err := config.Load("/etc/rollingfile.toml")
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	cond, err := cfg.Condition()
//	if err != nil {
//	    return err
//	}
//	w, err := rollingfile.New(cfg.WriterConfig(), cond)
package config
