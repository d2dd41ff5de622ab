// Package config loads the server configuration with viper. Values come
// from an optional config.yaml in the working directory and from SCRY_*
// environment variables, which win. The result is checked with validator
// struct tags before it is returned.
package config
