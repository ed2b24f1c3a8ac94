package migrations

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"unique;not null"`
	Batch     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type MigrationFunc func(*gorm.DB) error

type MigrationDefinition struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

// Migrator applies migrations in order and records them in batches so a
// rollback undoes one `migrate` run at a time.
type Migrator struct {
	db         *gorm.DB
	migrations []MigrationDefinition
	log        zerolog.Logger
}

func NewMigrator(db *gorm.DB, log zerolog.Logger) (*Migrator, error) {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	return &Migrator{
		db:         db,
		migrations: []MigrationDefinition{},
		log:        log.With().Str("component", "migrator").Logger(),
	}, nil
}

func (m *Migrator) AddMigration(migration MigrationDefinition) {
	m.migrations = append(m.migrations, migration)
}

// Migrate runs every pending migration in one new batch and returns how many ran.
func (m *Migrator) Migrate() (int, error) {
	m.log.Info().Msg("Running database migrations")

	batch, err := m.latestBatch()
	if err != nil {
		return 0, err
	}
	batch++

	applied := 0
	for _, migration := range m.migrations {
		done, err := m.hasRun(migration.Name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		m.log.Info().Str("migration", migration.Name).Msg("Migrating")

		tx := m.db.Begin()

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}

		migrationRecord := Migration{
			Name:  migration.Name,
			Batch: batch,
		}

		if err := tx.Create(&migrationRecord).Error; err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
		}

		if err := tx.Commit().Error; err != nil {
			return applied, fmt.Errorf("failed to commit migration %s: %w", migration.Name, err)
		}
		applied++
	}

	m.log.Info().Int("applied", applied).Int("batch", batch).Msg("Migration completed")
	return applied, nil
}

// Rollback undoes the last steps batches.
func (m *Migrator) Rollback(steps int) error {
	if steps <= 0 {
		steps = 1
	}

	batch, err := m.latestBatch()
	if err != nil {
		return err
	}

	for i := 0; i < steps && batch > 0; i++ {
		var migrationsToRollback []Migration
		if err := m.db.Where("batch = ?", batch).Order("id DESC").Find(&migrationsToRollback).Error; err != nil {
			return fmt.Errorf("load batch %d: %w", batch, err)
		}

		for _, migrationRecord := range migrationsToRollback {
			migration := m.findMigration(migrationRecord.Name)
			if migration == nil {
				return fmt.Errorf("migration definition not found: %s", migrationRecord.Name)
			}

			if migration.Down == nil {
				return fmt.Errorf("rollback not defined for migration: %s", migrationRecord.Name)
			}

			m.log.Info().Str("migration", migrationRecord.Name).Msg("Rolling back")

			tx := m.db.Begin()

			if err := migration.Down(tx); err != nil {
				tx.Rollback()
				return fmt.Errorf("rollback failed for %s: %w", migrationRecord.Name, err)
			}

			if err := tx.Delete(&migrationRecord).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to remove migration record %s: %w", migrationRecord.Name, err)
			}

			if err := tx.Commit().Error; err != nil {
				return fmt.Errorf("failed to commit rollback of %s: %w", migrationRecord.Name, err)
			}
		}

		batch--
	}

	m.log.Info().Int("steps", steps).Msg("Rollback completed")
	return nil
}

// Status returns the applied migrations, oldest first.
func (m *Migrator) Status() ([]Migration, error) {
	var applied []Migration
	if err := m.db.Order("batch ASC, id ASC").Find(&applied).Error; err != nil {
		return nil, err
	}
	return applied, nil
}

// Pending returns the names of migrations that have not run yet.
func (m *Migrator) Pending() ([]string, error) {
	var pending []string
	for _, migration := range m.migrations {
		done, err := m.hasRun(migration.Name)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, migration.Name)
		}
	}
	return pending, nil
}

func (m *Migrator) hasRun(name string) (bool, error) {
	var count int64
	if err := m.db.Model(&Migration{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}

func (m *Migrator) latestBatch() (int, error) {
	var migration Migration
	err := m.db.Order("batch DESC").First(&migration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read latest batch: %w", err)
	}
	return migration.Batch, nil
}

func (m *Migrator) findMigration(name string) *MigrationDefinition {
	for _, migration := range m.migrations {
		if migration.Name == name {
			return &migration
		}
	}
	return nil
}
