// Package config loads and validates Baby Care Tracker Core configuration.
//
// Configuration is layered: hardcoded defaults, then a YAML file, then
// environment variable overrides (BABYCARE_* variables set by the add-on
// supervisor). The loaded Config is constructed once at startup and passed
// by reference into every component - there is no ambient global state.
package config
