package rollingfile

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// FileInfo describes one dated file of a writer
type FileInfo struct {
	// Name is the base name, prefix.YYYYMMDD.HHMMSS
	Name string

	// Path is Name joined to the folder
	Path string

	// Timestamp parsed from the name, in local time
	Timestamp time.Time

	// Size in bytes
	Size int64
}

// parseFileName extracts the timestamp from a dated file name. Names that
// do not match prefix.YYYYMMDD.HHMMSS exactly are rejected.
func parseFileName(prefix, name string) (time.Time, bool) {
	suffix, ok := strings.CutPrefix(name, prefix+".")
	if !ok || len(suffix) != len(timestampLayout) {
		return time.Time{}, false
	}

	timestamp, err := time.ParseInLocation(timestampLayout, suffix, time.Local)
	if err != nil {
		return time.Time{}, false
	}

	return timestamp, true
}

// ListFiles returns the dated files for prefix in folder, newest first.
// The symlink and files with any other suffix are skipped.
func ListFiles(fsys afero.Fs, folder, prefix string) ([]FileInfo, error) {
	entries, err := afero.ReadDir(fsys, folder)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		timestamp, ok := parseFileName(prefix, entry.Name())
		if !ok {
			continue
		}

		files = append(files, FileInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(folder, entry.Name()),
			Timestamp: timestamp,
			Size:      entry.Size(),
		})
	}

	// The fixed width suffix makes name order the same as time order
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})

	return files, nil
}

// prune deletes the dated files beyond MaxFiles, oldest first. The file
// named current is never deleted. Failures are logged per file.
func (w *Writer[C]) prune(current string) {
	files, err := ListFiles(w.fs, w.config.Folder, w.config.Prefix)
	if err != nil {
		w.log.WithError(err).Warn("Failed to list files for retention")
		return
	}

	if len(files) <= w.config.MaxFiles {
		return
	}

	for _, file := range files[w.config.MaxFiles:] {
		if file.Name == current {
			continue
		}

		if err := w.fs.Remove(file.Path); err != nil {
			w.stats.incrBy(StatPruneFailures, 1)
			w.log.WithError(err).WithField("file", file.Path).Warn("Failed to remove old file")
			continue
		}

		w.stats.incrBy(StatPrunedFiles, 1)
	}
}
