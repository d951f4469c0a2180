package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	BootstrapStatusActive = "active"

	bootstrapStateTable = "system_bootstrap_state"
)

// BootstrapState is the singleton row recording the schema a migrator left
// behind.
type BootstrapState struct {
	ID            bool       `gorm:"column:id;primaryKey"`
	Status        string     `gorm:"column:status;type:text;not null"`
	SchemaVersion string     `gorm:"column:schema_version;type:text;not null"`
	Checksum      *string    `gorm:"column:checksum;type:text"`
	ActivatedAt   *time.Time `gorm:"column:activated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
}

func (BootstrapState) TableName() string { return bootstrapStateTable }

func activateBootstrapState(ctx context.Context, db *gorm.DB, schemaVersion, checksum string) error {
	version := strings.TrimSpace(schemaVersion)
	if version == "" {
		return errors.New("schema version is required for bootstrap state activation")
	}

	now := time.Now().UTC()
	state := BootstrapState{
		ID:            true,
		Status:        BootstrapStatusActive,
		SchemaVersion: version,
		Checksum:      nilIfEmpty(checksum),
		ActivatedAt:   &now,
		CreatedAt:     now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "schema_version", "checksum", "activated_at"}),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("activate system bootstrap state: %w", err)
	}
	return nil
}

// LoadBootstrapState reads the singleton row. It returns nil without error
// when the database was never migrated.
func LoadBootstrapState(ctx context.Context, db *gorm.DB) (*BootstrapState, error) {
	var state BootstrapState
	result := db.WithContext(ctx).Where("id = ?", true).Limit(1).Find(&state)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	state.Status = strings.ToLower(strings.TrimSpace(state.Status))
	state.SchemaVersion = strings.TrimSpace(state.SchemaVersion)
	if state.Checksum != nil {
		state.Checksum = nilIfEmpty(*state.Checksum)
	}
	return &state, nil
}

func nilIfEmpty(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
