// Package config provides configuration structures and utilities for
// sitecrawl. It defines the main configuration options for crawling,
// per-site overrides loaded from the .sitecrawl YAML file, and report
// generation preferences.
package config
