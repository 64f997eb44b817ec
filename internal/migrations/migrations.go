package migrations

import (
	"fmt"

	"mindease-be/internal/model"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// All lists the chunk store schema steps in apply order. IDs must never be reused.
func All() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID:      "0001_extensions",
			Migrate: createExtensions,
		},
		{
			ID: "0002_docs_chunks_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.DocChunk{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&model.DocChunk{})
			},
		},
		{
			ID:      "0003_docs_chunks_vector_index",
			Migrate: createIndexes,
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_docs_chunks_chunk_vec;`).Error
			},
		},
	}
}

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, All())
}

// Run applies every pending migration
func Run(db *gorm.DB) error {
	if err := GetMigrator(db).Migrate(); err != nil {
		return fmt.Errorf("migrate chunk store: %w", err)
	}
	return nil
}

func createExtensions(tx *gorm.DB) error {
	for _, ext := range []string{"pgcrypto", "vector"} {
		if err := tx.Exec(fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS %s;`, ext)).Error; err != nil {
			return fmt.Errorf("error creating extension %s: %w", ext, err)
		}
	}
	return nil
}

func createIndexes(tx *gorm.DB) error {
	for _, sql := range model.DocChunkIndexes {
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("error creating chunk index: %w", err)
		}
	}
	return nil
}
