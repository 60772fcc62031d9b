// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package config loads and validates service configuration.

Configuration is layered with Koanf v2: struct defaults first, then an
optional YAML file (CONFIG_PATH, ./config.yaml or /etc/kuchikomi/config.yaml),
then environment variables. Environment names are mapped explicitly in
envTransformFunc; unmapped variables are ignored.

Example config.yaml:

	server:
	  port: 8080
	geocode:
	  api_key: "..."
	  cache_size: 4096
	oracle:
	  model: gemini-2.5-flash
	  timeout: 20s
	social:
	  max_hops: 3
	  max_nodes: 3000

Usage:

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
