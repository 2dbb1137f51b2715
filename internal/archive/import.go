package archive

import (
	"fmt"
	"path/filepath"
	"sort"

	"timetracker/internal/timelog"
)

// Imported reports how many sessions were synced from one log file.
type Imported struct {
	Path     string
	Sessions int
}

// ImportGlob syncs every log file matching pattern. A malformed log aborts
// the import; nothing from it is archived.
func (r *Repository) ImportGlob(pattern string) ([]Imported, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad log pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)

	var imported []Imported
	for _, p := range paths {
		records, err := timelog.NewFileStore(p).Load()
		if err != nil {
			return imported, err
		}
		n, err := r.Sync(filepath.Base(p), records)
		if err != nil {
			return imported, err
		}
		imported = append(imported, Imported{Path: p, Sessions: n})
	}
	return imported, nil
}
