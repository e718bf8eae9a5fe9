package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

func matchBase(pattern, path string) (bool, error) {
	return filepath.Match(pattern, filepath.Base(path))
}

// trawlVFS is a near-verbatim port of go-gsf/search/search.go's
// unexported trawl, generalized to an arbitrary glob pattern.
func trawlVFS(vfs *tiledb.VFS, pattern, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		match, err := matchBase(pattern, file)
		if err != nil {
			return nil, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawlVFS(vfs, pattern, dir, items)
		if err != nil {
			return nil, err
		}
	}

	return items, nil
}

// TrawlObjectStore recursively searches uri (an S3/object-store or any
// other TileDB VFS-addressable root) for files matching pattern,
// generalized from go-gsf/search/search.go's FindGsf (which hardcoded
// "*.gsf") to any glob, for use against remote SDS-style archives.
func TrawlObjectStore(uri, pattern, configURI string) ([]string, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	return trawlVFS(vfs, pattern, uri, make([]string, 0))
}
