package googledrive

import (
	"fmt"
	"strings"
)

// Path represents an absolute path of folder names in Google Drive, resolved
// segment by segment from a root folder.
// Paths must start with '/' and use forward slashes as separators
// (e.g., "/folder/subfolder"). Relative path components like "." and ".."
// are not allowed. Path("/") denotes the root folder itself.
type Path string

func (p Path) resolve(d *Drive) (ID, error) {
	return d.ResolvePath(Root, p)
}

func splitPath(path string) (parts []string, err error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", ErrInvalidPath)
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path must be absolute and start with '/': %w", ErrInvalidPath)
	}

	for _, p := range strings.Split(path, "/") {
		if p == "." || p == ".." {
			return nil, fmt.Errorf("relative path components are not allowed: %w", ErrInvalidPath)
		}
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}

	return parts, nil
}
