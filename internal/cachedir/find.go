package cachedir

import (
	"os"
	"path/filepath"
	"strings"
)

// Find walks cwd and every ancestor directory looking for the pointer
// file, returning the cache directory it names. Per the design notes in
// spec.md §9, only the ancestor-walk strategy is implemented; the
// source's subtree-walking fallback is not authoritative and is not
// replicated here.
func Find(cwd string) (*Dir, error) {
	start, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}
	start, err = filepath.EvalSymlinks(start)
	if err != nil {
		return nil, err
	}

	current := start
	for {
		pointerPath := filepath.Join(current, PointerFile)
		if b, err := os.ReadFile(pointerPath); err == nil {
			target := strings.TrimSpace(string(b))
			if target != "" {
				if info, err := os.Stat(target); err == nil && info.IsDir() {
					return &Dir{Path: target}, nil
				}
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return nil, NotFoundError{}
}
