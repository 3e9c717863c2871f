package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeDefaultsToSQLite(t *testing.T) {
	var cfg Config
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.Path == "" || cfg.MaxConnections != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !strings.HasPrefix(cfg.MigrateURL(), "sqlite://") {
		t.Fatalf("migrate url = %s", cfg.MigrateURL())
	}
}

func TestNormalizePostgres(t *testing.T) {
	cfg := Config{Driver: "postgresql", Host: "db", Name: "bot", User: "u", Password: "p@ss"}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := cfg.MigrateURL(); got != "postgres://u:p%40ss@db:5432/bot?sslmode=disable" {
		t.Fatalf("migrate url = %s", got)
	}
	if cfg.Target() != "db:5432/bot" {
		t.Fatalf("target = %s", cfg.Target())
	}
}

func TestNormalizeRejectsUnknownDriver(t *testing.T) {
	cfg := Config{Driver: "mysql"}
	if err := cfg.Normalize(); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverSQLite} {
		files := listMigrationFiles(migrationsFS, "migrations/"+driver)
		if len(files) == 0 || parseVersion(files[0]) != 1 {
			t.Fatalf("%s migrations = %v", driver, files)
		}
	}
	if n := countApplied([]string{"000001_a.up.sql", "000002_b.up.sql"}, 0, 2); n != 2 {
		t.Fatalf("applied = %d", n)
	}
}

func TestSQLiteConnectAndMigrate(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")}
	if err := RunMigrations(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM session_records"); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows = %d", n)
	}
}
