package pathing

import (
	"log"
	"os"
	"path/filepath"
)

// Ensure directories exist on startup
func init() {
	// Directories that must exist:
	dirs := []string{
		GetDataDir(),
		GetConfigDir(),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				// Non-root test runs can't write /var/lib, callers override via env.
				log.Printf("Warning: could not create %s: %v", dir, err)
			}
		}
	}
}

func GetSettingsDbPath() string {
	return filepath.Join(GetDataDir(), "microgrid-settings.db")
}

// MICROGRID_DATA_DIR overrides the default, mostly for development.
func GetDataDir() string {
	if dir := os.Getenv("MICROGRID_DATA_DIR"); dir != "" {
		return dir
	}
	return "/var/lib/microgrid_monitor"
}

// MICROGRID_CONFIG_DIR overrides the default, mostly for development.
func GetConfigDir() string {
	if dir := os.Getenv("MICROGRID_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/microgrid_monitor"
}
