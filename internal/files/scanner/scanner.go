// Package scanner locates pipeline scripts on disk.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

// ScriptFile is one pipeline script.
type ScriptFile struct {
	// Path is the absolute or caller-relative path on disk.
	Path string

	// RelPath is the path relative to the pipeline root, with forward
	// slashes, used for ordering and logging.
	RelPath string
}

// ScanPipeline walks the pipeline directory tree and returns every .sql file,
// sorted lexically by relative path. Subdirectory names therefore fix
// execution order (e.g. 01-sources/, 02-enrichment/), and teardown reverses
// the same order. An empty result is ErrNoScriptsFound.
func ScanPipeline(root string) ([]ScriptFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("pipeline directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pipeline path %q is not a directory: %w", root, ksqlpipe.ErrInvalidConfig)
	}

	var files []ScriptFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".sql") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, ScriptFile{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning pipeline directory %q: %w", root, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("pipeline directory %q: %w", root, ksqlpipe.ErrNoScriptsFound)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	return files, nil
}
