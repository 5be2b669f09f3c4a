package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Migration is one numbered pair of SQL scripts from migrations/.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// catalog is loaded once; a broken embedded set surfaces from RunMigrations.
var catalog, catalogErr = loadMigrations(migrationFS, "migrations")

// GetMigrations returns the embedded migrations in version order.
func GetMigrations() []Migration {
	return catalog
}

func GetMigrationByVersion(version int) *Migration {
	return findMigration(catalog, version)
}

// loadMigrations pairs every NNNNNN_name.up.sql in dir with its .down.sql.
// Malformed names, missing down scripts and repeated versions are errors.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var set []Migration
	seen := map[int]string{}
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if entry.IsDir() || !ok {
			continue
		}

		rawVersion, name, ok := strings.Cut(base, "_")
		version, err := strconv.Atoi(rawVersion)
		if !ok || name == "" || err != nil || version < 1 {
			return nil, fmt.Errorf("migration %q: want NNNNNN_name.up.sql", entry.Name())
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by %q and %q", version, prev, base)
		}
		seen[version] = base

		up, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}

		set = append(set, Migration{
			Version:    version,
			Name:       name,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	slices.SortFunc(set, func(a, b Migration) int { return a.Version - b.Version })
	return set, nil
}

func findMigration(set []Migration, version int) *Migration {
	for i := range set {
		if set[i].Version == version {
			return &set[i]
		}
	}
	return nil
}

// pendingMigrations keeps the members of set whose version is not in applied.
func pendingMigrations(set []Migration, applied []int) []Migration {
	var out []Migration
	for _, m := range set {
		if !slices.Contains(applied, m.Version) {
			out = append(out, m)
		}
	}
	return out
}
