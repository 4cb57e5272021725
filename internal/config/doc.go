// Package config loads, normalizes, and validates pianoclips configuration data.
//
// It supplies repository defaults matching the values the generator has always
// used (1920x1080 white-on-black labels, 2 second notes, 150 wpm speech, 1 fps
// video), expands user paths, reads TOML files, and honours environment
// fallbacks such as OPENAI_API_KEY and PIANOCLIPS_RESULTS_DIR.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical engine names, and clear validation errors.
package config
