// Package config loads, normalizes, and validates the WOLS tool
// configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: id and validation policy, label rendering defaults, the
// artifact sink, the issuance archive, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
