package config

import "fmt"

// Check loads the configuration at path and discards it, reporting only
// whether it is valid. Used by the "config check" CLI subcommand.
func Check(path string) error {
	if _, err := Load(path); err != nil {
		return fmt.Errorf("config check failed: %w", err)
	}
	return nil
}
