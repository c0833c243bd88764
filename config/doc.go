// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// It covers the anonymization maps (authority to feed publisher, accepted
// device seed, optional profile collection base), broker topic settings and
// the health check server port.
package config
