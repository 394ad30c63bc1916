package migrator

import (
	"cmp"
	"fmt"
	"io/fs"
	"slices"

	"github.com/spf13/afero"
)

// MigrationProvider lists migrations in ascending version order.
type MigrationProvider interface {
	Migrations() []*Migration
}

// MigrationList is a set of migrations sorted by version.
type MigrationList []*Migration

// NewMigrationList returns the migrations sorted by version.
func NewMigrationList(migrations ...*Migration) MigrationList {
	list := slices.Clone(migrations)
	slices.SortFunc(list, func(a, b *Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return list
}

// Migrations implements MigrationProvider.
func (l MigrationList) Migrations() []*Migration {
	return l
}

// Find returns the migration with the given version.
func (l MigrationList) Find(version int) (*Migration, bool) {
	i, ok := slices.BinarySearchFunc(l, version, func(m *Migration, v int) int {
		return cmp.Compare(m.Version, v)
	})
	if !ok {
		return nil, false
	}
	return l[i], true
}

type filePair struct {
	name     string
	up, down string
}

// LoadMigrations reads the up/down file pairs the generator writes. Files
// that do not follow the naming scheme are ignored. A version with one
// direction missing or present twice is an error.
func LoadMigrations(fsys fs.FS) (MigrationList, error) {
	pairs := make(map[int]*filePair)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		mf, err := ParseMigrationFileName(d.Name())
		if err != nil {
			return nil
		}
		pair, ok := pairs[mf.Version]
		if !ok {
			pair = &filePair{name: mf.Name}
			pairs[mf.Version] = pair
		}
		slot := &pair.up
		if mf.Direction == "down" {
			slot = &pair.down
		}
		if *slot != "" {
			return fmt.Errorf("duplicate %s migration for version %d: %s", mf.Direction, mf.Version, path)
		}
		*slot = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations directory: %w", err)
	}

	var (
		incomplete []int
		migrations []*Migration
	)
	for version, pair := range pairs {
		if pair.up == "" || pair.down == "" {
			incomplete = append(incomplete, version)
			continue
		}
		migrations = append(migrations, &Migration{
			Version:     version,
			Description: pair.name,
			Up:          MigrationFuncFromSQLFilename(pair.up, fsys),
			Down:        MigrationFuncFromSQLFilename(pair.down, fsys),
		})
	}
	if len(incomplete) > 0 {
		slices.Sort(incomplete)
		return nil, fmt.Errorf("incomplete migrations found (missing up or down files): %v", incomplete)
	}
	return NewMigrationList(migrations...), nil
}

// LoadMigrationsFrom loads the migrations stored in dir of an afero
// filesystem.
func LoadMigrationsFrom(afs afero.Fs, dir string) (MigrationList, error) {
	return LoadMigrations(afero.NewIOFS(afero.NewBasePathFs(afs, dir)))
}
