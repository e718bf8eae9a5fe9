package archive

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Store is a TileDB group rooted at a base URI, holding one array per
// archived stream or result type, grounded on cmd/main.go's
// config/context/group lifecycle.
type Store struct {
	ctx     *tiledb.Context
	config  *tiledb.Config
	baseURI string
	group   *tiledb.Group
}

// NewStore opens (creating if necessary) a TileDB group at baseURI. An
// empty configURI uses TileDB's default configuration.
func NewStore(configURI, baseURI string) (*Store, error) {
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

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, err
	}

	grp, err := tiledb.NewGroup(ctx, baseURI)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, err
	}

	// Create is idempotent for our purposes: a daemon restart reopens an
	// existing group, so a failure here is tolerated and only resurfaces
	// if the subsequent Open also fails.
	_ = grp.Create()
	if err := grp.Open(tiledb.TILEDB_WRITE); err != nil {
		grp.Free()
		ctx.Free()
		config.Free()
		return nil, err
	}

	return &Store{ctx: ctx, config: config, baseURI: baseURI, group: grp}, nil
}

// Close releases the group, context and config handles held by the
// store.
func (s *Store) Close() error {
	err := s.group.Close()
	s.group.Free()
	s.ctx.Free()
	s.config.Free()
	return err
}

// ArrayURI returns the path of a named member array under the store's
// base group.
func (s *Store) ArrayURI(name string) string {
	return filepath.Join(s.baseURI, name)
}

// AddMember registers uri as a named member of the store's group.
func (s *Store) AddMember(uri, name string) error {
	return s.group.AddMember(uri, name, true)
}
