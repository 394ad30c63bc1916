package migrator

import (
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MigrationFile is a parsed migration file name.
type MigrationFile struct {
	Version   int
	Name      string // human readable, e.g. "Create Hr Cfg Pkg"
	Direction string // "up" or "down"
	Filename  string
}

var (
	migrationFileRe = regexp.MustCompile(`^(\d+)_([A-Za-z0-9_]+)\.(up|down)\.sql$`)
	nonWordRe       = regexp.MustCompile(`[^a-z0-9]+`)
	titleCaser      = cases.Title(language.English)
)

// ParseMigrationFileName parses NNNNNNNNNN_description.(up|down).sql.
func ParseMigrationFileName(filename string) (*MigrationFile, error) {
	m := migrationFileRe.FindStringSubmatch(filename)
	if m == nil {
		return nil, fmt.Errorf("invalid migration filename %q: expected NNNNNNNNNN_description.(up|down).sql", filename)
	}
	version, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("invalid migration version in %q: %w", filename, err)
	}
	return &MigrationFile{
		Version:   version,
		Name:      titleCaser.String(strings.ReplaceAll(m[2], "_", " ")),
		Direction: m[3],
		Filename:  filename,
	}, nil
}

// GenerateMigrationFileName builds the file name of one direction of a
// migration. The description is lowercased and every run of other characters
// becomes a single underscore.
func GenerateMigrationFileName(version int, description, direction string) string {
	name := strings.Trim(nonWordRe.ReplaceAllString(strings.ToLower(description), "_"), "_")
	if name == "" {
		name = "migration"
	}
	return fmt.Sprintf("%010d_%s.%s.sql", version, name, direction)
}

// GetNextMigrationVersion returns the current Unix time, the version of a
// newly generated migration.
func GetNextMigrationVersion() int {
	return int(time.Now().Unix())
}

// LatestMigrationVersion returns the highest version among the migration
// files of fsys, or 0 when there are none.
func LatestMigrationVersion(fsys fs.FS) (int, error) {
	latest := 0
	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if mf, err := ParseMigrationFileName(d.Name()); err == nil && mf.Version > latest {
			latest = mf.Version
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan migrations: %w", err)
	}
	return latest, nil
}
