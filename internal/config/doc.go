// Package config discovers and parses the kseqi configuration file:
// locating it under $XDG_CONFIG_HOME or $HOME/.config, bootstrapping a
// bundled example when missing, and parsing its line-oriented
// sequence-to-action grammar (spec.md §6).
package config
