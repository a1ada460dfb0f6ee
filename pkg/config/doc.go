// Package config loads tagged configuration structs from the environment.
//
// A .env file in the working directory is applied once, if present, then
// github.com/caarlos0/env/v11 parses the struct. Each struct type is parsed
// once per process and served from a cache afterwards.
package config
