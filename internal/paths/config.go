// Package paths provides config file resolution.
package paths

import (
	"os"
	"path/filepath"
)

// Config file locations, in lookup order.
const (
	LocalConfigDir = ".zappifest"
	UserConfigDir  = ".config/zappifest"
	ConfigFileName = "config.yaml"
)

// LocalConfigFile is the project-level config path relative to the working
// directory.
var LocalConfigFile = filepath.Join(LocalConfigDir, ConfigFileName)

// ResolveConfigFile returns the config file to load.
//
// Lookup order:
//   - explicit, when non-empty
//   - <dir>/.zappifest/config.yaml, when it exists
//   - <home>/.config/zappifest/config.yaml
//
// An empty dir means the working directory. The user path is returned even
// when it does not exist; the caller treats a missing file as "no config".
// It returns "" only when no home directory can be determined.
func ResolveConfigFile(explicit, dir string) string {
	if explicit != "" {
		return filepath.Clean(explicit)
	}
	if dir == "" {
		dir = "."
	}
	local := filepath.Join(dir, LocalConfigFile)
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}
	return UserConfigFile()
}

// UserConfigFile returns ~/.config/zappifest/config.yaml, or "" when the
// home directory is unknown.
func UserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, UserConfigDir, ConfigFileName)
}
