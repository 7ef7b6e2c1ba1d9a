// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every field is optional; LoadWithDefaults fills in the values the web
// application was tuned with, and command-line switches can override the
// memory-related settings afterwards.
package config
