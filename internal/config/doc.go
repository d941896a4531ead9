// Package config loads, normalizes, and validates dubtrack's TOML
// configuration. A sample document is embedded for "dubtrack config init".
package config
