// Package archive lets stylesheet sources be read directly from zip archives.
package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	fixzip "github.com/hidez8891/zip"
	"github.com/maruel/natural"
)

// headerSize is enough for any signature filetype knows about.
const headerSize = 262

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, name is slash separated path of the file inside archive and r
// gives access to its uncompressed content. If an error is returned,
// processing stops.
type WalkFunc func(archive, name string, r io.Reader) error

// IsArchive reports whether file at path is a zip archive. Only content is
// checked, extension does not matter.
func IsArchive(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// Walk visits files in the archive whose names start with prefix and for
// which match returns true (nil match accepts everything). Files are visited
// in natural order of their names. Entries with path traversal components
// ("..") or absolute paths make Walk fail before anything is visited.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := fixzip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*fixzip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b *fixzip.File) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		}
		return 1
	})

	for _, f := range files {
		if err := visit(archive, f, walkFn); err != nil {
			return err
		}
	}
	return nil
}

func visit(archive string, f *fixzip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("unable to open %q in %s: %w", f.Name, archive, err)
	}
	defer rc.Close()
	return walkFn(archive, f.Name, rc)
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(name, "/"), "..")
}
