// Package config provides configuration loading, merging, and validation
// facilities for vaultkv.
//
// Configuration is assembled from multiple sources. For every field the
// first source with a non-zero value wins:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry point is [GetStructuredConfig]. Command-line flags are
// bound to a [github.com/spf13/pflag.FlagSet] with [BindFlags].
package config
