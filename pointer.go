package rollingfile

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// updatePointer points the symlink folder/prefix at the file just opened.
// Failures are ignored; the pointer is a convenience for tailing.
func (w *Writer[C]) updatePointer(name string) {
	linker, ok := w.fs.(afero.Symlinker)
	if !ok {
		return
	}

	folder := canonicalPath(w.config.Folder)
	pointer := filepath.Join(folder, w.config.Prefix)

	// Whatever holds the name is replaced, except a directory
	if info, _, err := linker.LstatIfPossible(pointer); err == nil && !info.IsDir() {
		_ = w.fs.Remove(pointer)
	}

	_ = linker.SymlinkIfPossible(filepath.Join(folder, name), pointer)
}

// ResolvePointer returns the path of the file the symlink folder/prefix
// points to.
func ResolvePointer(fsys afero.Fs, folder, prefix string) (string, error) {
	pointer := filepath.Join(folder, prefix)

	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return "", &os.PathError{Op: "readlink", Path: pointer, Err: afero.ErrNoReadlink}
	}

	target, err := reader.ReadlinkIfPossible(pointer)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(folder, target)
	}
	return target, nil
}

// canonicalPath returns the absolute path of p with symlinks resolved,
// falling back to the plain absolute path.
func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
