package rollingfile

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// multiFileReader reads a list of files one after the other
type multiFileReader struct {
	fs      afero.Fs
	paths   []string
	current afero.File
	closed  bool
}

// OpenReader returns a reader over every dated file of prefix in folder,
// oldest first. Files pruned after the listing are skipped.
func OpenReader(fsys afero.Fs, folder, prefix string) (io.ReadCloser, error) {
	files, err := ListFiles(fsys, folder, prefix)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		paths = append(paths, files[i].Path)
	}

	return &multiFileReader{
		fs:    fsys,
		paths: paths,
	}, nil
}

// Read reads from the current file and moves to the next one at EOF
func (r *multiFileReader) Read(p []byte) (int, error) {
	for {
		if r.closed {
			return 0, os.ErrClosed
		}

		if r.current == nil {
			if len(r.paths) == 0 {
				return 0, io.EOF
			}

			path := r.paths[0]
			r.paths = r.paths[1:]

			file, err := r.fs.Open(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return 0, err
			}
			r.current = file
		}

		n, err := r.current.Read(p)
		if err == io.EOF {
			closeErr := r.current.Close()
			r.current = nil
			if closeErr != nil {
				return n, closeErr
			}
			if n > 0 {
				return n, nil
			}
			continue
		}

		return n, err
	}
}

// Close releases the file being read
func (r *multiFileReader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	r.paths = nil
	if r.current != nil {
		err := r.current.Close()
		r.current = nil
		return err
	}

	return nil
}
