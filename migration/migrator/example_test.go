package migrator_test

import (
	"fmt"
	"testing/fstest"

	"github.com/stokaro/ora2pg/migration/migrator"
)

// Example demonstrates working with migration file utilities
func ExampleParseMigrationFileName() {
	filenames := []string{
		"0000000001_create_hr_cfg_pkg.up.sql",
		"0000000002_create_emp_v.down.sql",
		"invalid_filename.sql",
	}

	for _, filename := range filenames {
		migrationFile, err := migrator.ParseMigrationFileName(filename)
		if err != nil {
			fmt.Printf("Invalid filename: %s\n", filename)
			continue
		}

		fmt.Printf("File: %s\n", filename)
		fmt.Printf("  Version: %d\n", migrationFile.Version)
		fmt.Printf("  Name: %s\n", migrationFile.Name)
		fmt.Printf("  Direction: %s\n", migrationFile.Direction)
	}

	// Output:
	// File: 0000000001_create_hr_cfg_pkg.up.sql
	//   Version: 1
	//   Name: Create Hr Cfg Pkg
	//   Direction: up
	// File: 0000000002_create_emp_v.down.sql
	//   Version: 2
	//   Name: Create Emp V
	//   Direction: down
	// Invalid filename: invalid_filename.sql
}

// Example demonstrates generating migration filenames
func ExampleGenerateMigrationFileName() {
	version := 1760659200
	description := "HR.CFG_PKG package"

	fmt.Println(migrator.GenerateMigrationFileName(version, description, "up"))
	fmt.Println(migrator.GenerateMigrationFileName(version, description, "down"))

	// Output:
	// 1760659200_hr_cfg_pkg_package.up.sql
	// 1760659200_hr_cfg_pkg_package.down.sql
}

// Example demonstrates loading transpiled migrations from a filesystem
func ExampleLoadMigrations() {
	fsys := fstest.MapFS{
		"0000000001_create_hr_cfg_pkg.up.sql": &fstest.MapFile{
			Data: []byte("CREATE DOMAIN hr_cfg_pkg_money_t AS numeric(10,2) NOT NULL;"),
		},
		"0000000001_create_hr_cfg_pkg.down.sql": &fstest.MapFile{
			Data: []byte("DROP DOMAIN IF EXISTS hr_cfg_pkg_money_t;"),
		},
	}

	list, err := migrator.LoadMigrations(fsys)
	if err != nil {
		fmt.Printf("Failed to load migrations: %v\n", err)
		return
	}

	for _, migration := range list {
		fmt.Printf("Migration: v%d - %s\n", migration.Version, migration.Description)
	}

	// Output:
	// Migration: v1 - Create Hr Cfg Pkg
}
