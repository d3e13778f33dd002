package migrate

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/evergreenfarmers/storefront/pkg/slug"
)

const (
	versionLayout  = "20060102150405"
	upAnnotation   = "-- +goose Up"
	downAnnotation = "-- +goose Down"
)

//go:embed migrations/*.sql
var shipped embed.FS

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Embedded returns the migrations compiled into the binary, rooted so that
// the .sql files sit at ".".
func Embedded() fs.FS {
	sub, err := fs.Sub(shipped, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// CreateSQLMigration writes an empty goose migration named
// <version>_<name>.sql into dir, where version is now in UTC.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	safe := strings.ReplaceAll(slug.Make(name), "-", "_")
	if safe == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", now.UTC().Format(versionLayout), safe))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()

	body := upAnnotation + "\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n\n" +
		downAnnotation + "\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n"
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// ValidateDir checks the migrations in dir; see ValidateFS.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS rejects badly named files, duplicate versions and files whose
// Up section is missing or does not precede the Down section.
func ValidateFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			return fmt.Errorf("invalid migration filename %q (expected %s_name.sql)", name, strings.Repeat("9", len(versionLayout)))
		}
		if prev, dup := versions[match[1]]; dup {
			return fmt.Errorf("duplicate migration version %s in %q and %q", match[1], prev, name)
		}
		versions[match[1]] = name

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		body := string(raw)
		up := strings.Index(body, upAnnotation)
		down := strings.Index(body, downAnnotation)
		switch {
		case up < 0:
			return fmt.Errorf("migration %q has no %q section", name, upAnnotation)
		case down < 0:
			return fmt.Errorf("migration %q has no %q section", name, downAnnotation)
		case down < up:
			return fmt.Errorf("migration %q declares Down before Up", name)
		}
	}
	return nil
}
