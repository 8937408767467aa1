// Driftwood - Personalized Content Discovery
// Copyright 2026 Driftwood Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftwood-io/driftwood

// Package config loads application configuration from layered sources
// using Koanf: built-in defaults, an optional YAML file, and environment
// variables prefixed with DRIFTWOOD_, in increasing priority.
package config
