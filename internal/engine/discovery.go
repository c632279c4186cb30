package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bitvcheck/internal/page"
)

// ResolveTargets expands local targets into HTML files: a directory yields
// every .html/.htm file below it, a glob pattern its matches. URLs and plain
// file paths pass through. Duplicates are dropped, first occurrence wins.
func ResolveTargets(targets []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		path, local := page.LocalPath(t)
		if !local {
			add(t)
			continue
		}

		if strings.ContainsAny(path, "*?[") {
			matches, err := filepath.Glob(path)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", t, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", t)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			// Missing files are reported when the target is opened.
			add(t)
			continue
		}
		files, err := htmlFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no HTML files in %s", path)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

func htmlFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
