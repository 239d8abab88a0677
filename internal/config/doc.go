// Package config provides configuration structures and utilities for recipescan.
// It defines the runtime options of a crawl, the YAML file holding site
// profiles, and the environment overrides applied on top of both.
package config
