// Package shared resolves the filesystem locations that every process
// using the library agrees on. The media database lives at one
// well-known path so the main app and companion processes open the
// same file.
package shared

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "castkeep"

// MediaFile returns the shared media database path, creating parent
// directories as needed.
func MediaFile() (string, error) {
	return xdg.DataFile(filepath.Join(AppName, "media.db"))
}

// DataDir returns the application data directory. It is not created.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ConfigFile returns the default config file path. It is not created.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}
