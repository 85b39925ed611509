// Package config loads busy's configuration.
//
// Values are layered with koanf, later layers overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file: an explicit path, or $XDG_CONFIG_HOME/busy/config.{toml,yaml,yml}
//  3. BUSY_<SECTION>_<KEY> environment variables (BUSY_RUN_MAX_PARALLEL=4)
//
// The parser for a file is chosen from its extension.
package config
