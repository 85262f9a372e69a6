package osutil

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// maxFileSize is the maximum size an inspected file can be before it is
// skipped. Release and package database files are all well under this.
const maxFileSize = 32 * 1024 * 1024

// FilesMap is a map of files relative to an inspected root, keyed by path.
//
// Paths must not begin with "/".
type FilesMap map[string][]byte

// ReadFiles loads the requested paths from the filesystem rooted at root.
// Missing files are simply absent from the returned map.
func ReadFiles(root string, paths []string) (FilesMap, error) {
	files := make(FilesMap)

	for _, path := range paths {
		fullPath := filepath.Join(root, path)

		fi, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		if fi.Size() > maxFileSize {
			log.WithField("path", fullPath).Warning("skipping oversized file")
			continue
		}

		d, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, err
		}
		files[path] = d
	}

	return files, nil
}
