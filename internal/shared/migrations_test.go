package shared

import (
	"testing"
	"testing/fstest"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations(migrationFiles)
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_cache" {
			t.Errorf("expected first migration create_cache, got %s", migrations[0].Name)
		}
	})

	t.Run("loadMigrations Rejects Incomplete Pairs", func(t *testing.T) {
		fsys := fstest.MapFS{
			"sql/0000_only_up_up.sql": {Data: []byte("CREATE TABLE x (id INTEGER);")},
		}

		if _, err := loadMigrations(fsys); err == nil {
			t.Error("expected error for migration without down SQL")
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		// Running twice is a no-op
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to re-run migrations: %v", err)
		}

		if _, err := db.Exec("INSERT INTO cache_entries (key, value) VALUES ('k', '1')"); err != nil {
			t.Fatalf("expected cache_entries table to exist: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if _, err := db.Exec("SELECT COUNT(*) FROM play_log"); err == nil {
			t.Error("expected play_log to be dropped after rollback")
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback second migration: %v", err)
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing is left to roll back")
		}
	})

	t.Run("splitStatements", func(t *testing.T) {
		stmts := splitStatements("-- comment\nCREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT); -- trailing\n")
		if len(stmts) != 2 {
			t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
		}
	})
}
