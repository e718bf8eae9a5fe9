// Package search locates archive files (Mini-SEED day files, FEP region
// files) by glob pattern, recursively, on either a local filesystem or a
// TileDB-addressable object store.
package search

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Trawl recursively searches root for files whose base name matches
// pattern (filepath.Match syntax), generalized from
// go-gsf/search/search.go's TileDB-VFS-only trawl to any io/fs.FS so it
// also works against a plain local directory tree.
func Trawl(fsys fs.FS, root, pattern string) ([]string, error) {
	var items []string
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		match, err := filepath.Match(pattern, filepath.Base(path))
		if err != nil {
			return err
		}
		if match {
			items = append(items, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindMseed recursively searches root (a local directory, typically an
// SDS archive) for Mini-SEED day files, the local-filesystem counterpart
// to go-gsf/search/search.go's FindGsf.
func FindMseed(root string) ([]string, error) {
	items, err := Trawl(os.DirFS(root), ".", "*.D.*")
	if err != nil {
		return nil, err
	}
	return joinRoot(root, items), nil
}

// FindFEP recursively searches root for Flinn-Engdahl polygon files
// (spec.md §6's region-service input format).
func FindFEP(root string) ([]string, error) {
	items, err := Trawl(os.DirFS(root), ".", "*.fep")
	if err != nil {
		return nil, err
	}
	return joinRoot(root, items), nil
}

func joinRoot(root string, items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = filepath.Join(root, it)
	}
	return out
}
