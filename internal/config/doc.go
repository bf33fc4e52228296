// Package config loads cdg settings from a TOML file, applies CDG_*
// environment overrides, and validates the result.
package config
