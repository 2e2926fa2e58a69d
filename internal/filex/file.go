package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDirName is the per-user directory name for client state.
const AppDirName = "gophauth"

// EnsureDir creates dir (and parents) readable only by the current user.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// SessionDir resolves the client state directory:
// $XDG_CONFIG_HOME/gophauth, falling back to the OS user config dir.
func SessionDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		var err error
		base, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}
	}
	return filepath.Join(base, AppDirName), nil
}
