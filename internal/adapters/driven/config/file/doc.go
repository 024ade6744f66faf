// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML settings file
//   - LoadDotEnv: .env loading for API keys
//   - ExpandPaths: doublestar glob expansion of corpus paths
package file
