package store

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: Core tables. AutoMigrate creates the unique
		// indexes from struct tags, including the transcript and summary
		// cache keys.
		{
			ID: "001_core_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&User{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&Prompt{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&Transcription{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&Summary{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("summaries", "transcriptions", "prompts", "users")
			},
		},

		// Migration 002: Seed the named summarization prompts. The
		// pipeline treats these rows as read-only lookup data.
		{
			ID: "002_seed_prompts",
			Migrate: func(tx *gorm.DB) error {
				prompts := []Prompt{
					{
						Name: "summary",
						Text: "Summarize the conversation below. Keep every substantive point, decision and open question. Answer in the language of the conversation.",
					},
					{
						Name: "short_summary",
						Text: "Summarize the conversation below in at most five sentences. Answer in the language of the conversation.",
					},
					{
						Name: "protocol",
						Text: "Write meeting minutes for the conversation below: participants, agenda items discussed, decisions made and action items with owners. Answer in the language of the conversation.",
					},
				}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&prompts).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("name IN ?", []string{"summary", "short_summary", "protocol"}).
					Delete(&Prompt{}).Error
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("run gormigrate migrations: %w", err)
	}

	return nil
}
