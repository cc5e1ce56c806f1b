// Package config loads, normalizes, and validates wallcrop configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the WALLCROP_WALLPAPERS_DIR
// environment fallback. The Config type centralizes the wallpaper directory,
// metadata store location, minimum output size, external tool binaries and
// the ordered list of target resolutions.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, parsed aspect ratios, and clear validation errors.
package config
