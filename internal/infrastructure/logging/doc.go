// Package logging provides structured logging built on log/slog.
//
// All components receive a *Logger (or derive one via With) from the
// application bootstrap. Output format, level, and destination come
// from the logging section of config.yaml.
package logging
