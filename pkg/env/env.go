// Package env is for the odd raw lookup that happens before, or outside,
// envconfig loading — PORT overrides in main, mostly.
package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
