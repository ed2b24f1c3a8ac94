package migrations

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestCoreMigrateAndRollback(t *testing.T) {
	db := openDB(t)
	migrator, err := NewCoreMigrator(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCoreMigrator: %v", err)
	}

	applied, err := migrator.Migrate()
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if applied != len(GetCoreMigrations()) {
		t.Fatalf("applied = %d, want %d", applied, len(GetCoreMigrations()))
	}
	for _, table := range []string{"competitions", "scoring_rules", "matches", "player_points", "fantasy_rosters", "roster_weekly_points"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("table %s missing after migrate", table)
		}
	}

	again, err := migrator.Migrate()
	if err != nil {
		t.Fatalf("Migrate again: %v", err)
	}
	if again != 0 {
		t.Fatalf("second migrate applied %d, want 0", again)
	}

	status, err := migrator.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(status) != applied || status[0].Batch != 1 {
		t.Fatalf("status = %+v", status)
	}

	if err := migrator.Rollback(1); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if db.Migrator().HasTable("matches") || db.Migrator().HasTable("player_points") {
		t.Fatal("tables still present after rollback")
	}

	pending, err := migrator.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != applied {
		t.Fatalf("pending = %v, want all migrations", pending)
	}
}

func TestRollbackInBatches(t *testing.T) {
	db := openDB(t)
	migrator, err := NewMigrator(db, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMigrator: %v", err)
	}

	definitions := GetCoreMigrations()
	migrator.AddMigration(definitions[0])
	if _, err := migrator.Migrate(); err != nil {
		t.Fatalf("Migrate batch 1: %v", err)
	}
	migrator.AddMigration(definitions[1])
	if _, err := migrator.Migrate(); err != nil {
		t.Fatalf("Migrate batch 2: %v", err)
	}

	if err := migrator.Rollback(1); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if db.Migrator().HasTable("matches") {
		t.Fatal("batch 2 table still present")
	}
	if !db.Migrator().HasTable("competitions") {
		t.Fatal("batch 1 table removed by single-step rollback")
	}
}
