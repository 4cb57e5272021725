// Package main hosts the pianoclips CLI entrypoint and command graph.
//
// Running the binary with no arguments generates every configured key's
// clip. Subcommands inspect the keyboard, the TTS voices, the environment
// and the run history, or scaffold a configuration file. Configuration
// resolution and logger setup live here so the internal packages never
// touch flags or the terminal.
package main
