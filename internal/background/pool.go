package background

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var clipExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
}

// ListPool returns the clip files under dir, sorted by name. Non-clip files
// and subdirectories are ignored.
func ListPool(dir string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, ErrNoBackgroundAssets
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var clips []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := clipExtensions[ext]; !ok {
			continue
		}
		clips = append(clips, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(clips)
	return clips, nil
}
