// Package config loads, normalizes, and validates pairdex configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// PAIRDEX_LEARNED_PATH, optionally sourced from a .env file in the working
// directory. The Config type centralizes every knob the scanner, matcher, and
// CLI need so the learned-pairs file, scan catalog, and log directory are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
