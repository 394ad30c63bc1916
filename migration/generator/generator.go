// Package generator writes transpiled output as versioned up/down migration
// files that the migrator can apply.
package generator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/stokaro/ora2pg/core/transform"
	"github.com/stokaro/ora2pg/migration/migrator"
)

// GenerateMigrationOptions contains options for migration generation
type GenerateMigrationOptions struct {
	// OutputDir is the directory where migration files will be saved
	OutputDir string
	// MigrationName is the name for the migration (optional, defaults to "migration")
	MigrationName string
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// MigrationFiles represents the generated migration files
type MigrationFiles struct {
	UpFile   string // Path to the up migration file
	DownFile string // Path to the down migration file
	Version  int    // Migration version (Unix timestamp)
}

// GenerateMigration writes the planned outputs of a transpilation run as a
// migration. The down file drops the generated objects in reverse order.
// It returns nil files when the outputs contain no SQL.
func GenerateMigration(afs afero.Fs, outputs []transform.Output, opts GenerateMigrationOptions) (*MigrationFiles, error) {
	if opts.MigrationName == "" {
		opts.MigrationName = "migration"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	script := transform.Script(outputs)
	if strings.TrimSpace(script) == "" {
		logger.Info("Nothing to write: no SQL generated")
		return nil, nil
	}

	now := time.Now()
	up := header("UP", now) + script
	down := header("DOWN", now)
	if drops := transform.DropScript(outputs); drops != "" {
		down += drops
	} else {
		down += "-- No rollback operations needed\n"
	}

	files, err := Write(afs, opts.OutputDir, opts.MigrationName, up, down)
	if err != nil {
		return nil, err
	}
	logger.Info("Migration written", "version", files.Version, "up", files.UpFile, "down", files.DownFile)
	return files, nil
}

func header(direction string, now time.Time) string {
	return fmt.Sprintf("-- Migration generated by ora2pg\n-- Generated on: %s\n-- Direction: %s\n\n", now.Format(time.RFC3339), direction)
}

// Write writes up and down SQL to dir as NNNNNNNNNN_name.up.sql and
// NNNNNNNNNN_name.down.sql. The version is the current Unix time, raised
// above every version already present in dir so that migrations written
// within the same second still sort in write order.
func Write(afs afero.Fs, dir, name, upSQL, downSQL string) (*MigrationFiles, error) {
	if err := afs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	latest, err := migrator.LatestMigrationVersion(afero.NewIOFS(afero.NewBasePathFs(afs, dir)))
	if err != nil {
		return nil, err
	}
	version := max(migrator.GetNextMigrationVersion(), latest+1)
	slog.Debug("Generated migration version", "version", version)

	upFilePath, downFilePath := paths(dir, version, name)
	for {
		info, err := afs.Stat(upFilePath)
		if err != nil || info.Size() == 0 {
			break
		}
		version++
		upFilePath, downFilePath = paths(dir, version, name)
	}

	if err := afero.WriteFile(afs, upFilePath, []byte(upSQL), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write up migration file: %w", err)
	}
	if err := afero.WriteFile(afs, downFilePath, []byte(downSQL), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write down migration file: %w", err)
	}

	return &MigrationFiles{
		UpFile:   upFilePath,
		DownFile: downFilePath,
		Version:  version,
	}, nil
}

func paths(dir string, version int, name string) (up, down string) {
	return filepath.Join(dir, migrator.GenerateMigrationFileName(version, name, "up")),
		filepath.Join(dir, migrator.GenerateMigrationFileName(version, name, "down"))
}
