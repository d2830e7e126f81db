package config

import (
	"path/filepath"
	"strings"
)

// resolvePath joins an image entry onto the image directory.
// Entries with a leading slash are rooted at the image directory, not the filesystem.
func resolvePath(dir, name string) string {
	name = strings.TrimLeft(filepath.ToSlash(name), "/")
	if dir == "" {
		return filepath.FromSlash(name)
	}
	return filepath.Join(dir, filepath.FromSlash(name))
}
