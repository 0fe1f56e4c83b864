// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader on top of koanf.
//
// Sources, lowest to highest priority:
//
//  1. Default values (the target struct as passed in)
//  2. Configuration file (YAML)
//  3. Prefixed environment variables (SESSGATE_SECTION__KEY)
//  4. Legacy environment variables (API_PORT, PROXY_KEY, ...)
//  5. Explicit overrides (command-line flags, via LoadMap)
//
// A Watcher reports changes to the configuration file so that the
// settings which can change at runtime (the log level) are re-applied.
package confloader
