package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MaterialModel is one catalog item (textbook, kit, lab equipment...). A
// material referenced by stock or movements is never hard-deleted, only
// deactivated.
type MaterialModel struct {
	// PK
	MaterialID uuid.UUID `json:"material_id" gorm:"column:material_id;type:uuid;primaryKey"`

	// Tenant
	MaterialSchoolID uuid.UUID `json:"material_school_id" gorm:"column:material_school_id;type:uuid;not null;index:idx_material_school"`

	// Catalog fields; code unique per tenant while alive
	MaterialCode     string         `json:"material_code" gorm:"column:material_code;type:varchar(64);not null;index:uq_material_code_per_school_alive,unique,where:material_deleted_at IS NULL"`
	MaterialName     string         `json:"material_name" gorm:"column:material_name;type:varchar(160);not null"`
	MaterialCategory *string        `json:"material_category,omitempty" gorm:"column:material_category;type:varchar(80)"`
	MaterialTags     pq.StringArray `json:"material_tags,omitempty" gorm:"column:material_tags;type:text[]"`

	// Owning school level
	MaterialLevelID uuid.UUID `json:"material_level_id" gorm:"column:material_level_id;type:uuid;not null;index:idx_material_level"`

	MaterialIsActive bool `json:"material_is_active" gorm:"column:material_is_active;not null;default:true;index:idx_material_active"`

	MaterialCreatedAt time.Time      `json:"material_created_at" gorm:"column:material_created_at;not null;autoCreateTime"`
	MaterialUpdatedAt time.Time      `json:"material_updated_at" gorm:"column:material_updated_at;not null;autoUpdateTime"`
	MaterialDeletedAt gorm.DeletedAt `json:"material_deleted_at,omitempty" gorm:"column:material_deleted_at;index"`
}

func (MaterialModel) TableName() string { return "materials" }

func (m *MaterialModel) BeforeCreate(tx *gorm.DB) error {
	if m.MaterialID == uuid.Nil {
		m.MaterialID = uuid.New()
	}
	return nil
}
