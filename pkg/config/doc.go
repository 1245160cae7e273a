// Package config loads, defaults, validates, and watches the gateway's
// YAML configuration. Environment variables of the form RELAY_SECTION_FIELD
// override file values. The Watcher hot-reloads the file so pricing changes
// take effect without a restart.
package config
