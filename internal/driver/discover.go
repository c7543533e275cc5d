package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions checked when none are configured.
var DefaultExtensions = []string{".php"}

// DiscoverOptions controls which files a directory walk yields.
type DiscoverOptions struct {
	// Extensions lists accepted suffixes, with or without the leading dot.
	Extensions []string
	// Exclude holds filepath.Match patterns matched against the path
	// relative to the walk root and against each path element.
	Exclude []string
}

// Discover expands paths into a sorted, de-duplicated list of files. Files
// named explicitly are kept whatever their extension; directories are
// walked recursively.
func Discover(paths []string, opts DiscoverOptions) ([]string, error) {
	for _, pattern := range opts.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	exts := normalizeExtensions(opts.Extensions)

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if rel != "." && excluded(rel, opts.Exclude) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && hasExtension(path, exts) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// deterministic order
	sort.Strings(files)
	return files, nil
}

func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return DefaultExtensions
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		for _, elem := range strings.Split(rel, "/") {
			if ok, _ := filepath.Match(pattern, elem); ok {
				return true
			}
		}
	}
	return false
}
