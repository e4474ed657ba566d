package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockModel is the materialized projection of the movement ledger for one
// scope key. It is only ever written by the ledger service applying a
// movement's effect inside the same transaction; client requests never touch
// the quantities directly.
//
// Invariant: 0 <= quantity_available <= quantity_total.
type StockModel struct {
	// PK
	StockID uuid.UUID `json:"stock_id" gorm:"column:stock_id;type:uuid;primaryKey"`

	// Scope (unique per tenant/year/material/level/class). Split into two
	// partial indexes because NULL class ids never collide in a plain unique
	// index, and one row per level pool must be enforced too.
	StockSchoolID       uuid.UUID  `json:"stock_school_id" gorm:"column:stock_school_id;type:uuid;not null;index:uq_stock_scope_level,unique,where:stock_class_id IS NULL,priority:1;index:uq_stock_scope_class,unique,where:stock_class_id IS NOT NULL,priority:1"`
	StockAcademicYearID uuid.UUID  `json:"stock_academic_year_id" gorm:"column:stock_academic_year_id;type:uuid;not null;index:uq_stock_scope_level,unique,where:stock_class_id IS NULL,priority:2;index:uq_stock_scope_class,unique,where:stock_class_id IS NOT NULL,priority:2"`
	StockMaterialID     uuid.UUID  `json:"stock_material_id" gorm:"column:stock_material_id;type:uuid;not null;index:uq_stock_scope_level,unique,where:stock_class_id IS NULL,priority:3;index:uq_stock_scope_class,unique,where:stock_class_id IS NOT NULL,priority:3"`
	StockLevelID        uuid.UUID  `json:"stock_level_id" gorm:"column:stock_level_id;type:uuid;not null;index:uq_stock_scope_level,unique,where:stock_class_id IS NULL,priority:4;index:uq_stock_scope_class,unique,where:stock_class_id IS NOT NULL,priority:4"`
	StockClassID        *uuid.UUID `json:"stock_class_id,omitempty" gorm:"column:stock_class_id;type:uuid;index:uq_stock_scope_class,unique,where:stock_class_id IS NOT NULL,priority:5"`

	StockQuantityTotal     int `json:"stock_quantity_total" gorm:"column:stock_quantity_total;not null;default:0"`
	StockQuantityAvailable int `json:"stock_quantity_available" gorm:"column:stock_quantity_available;not null;default:0"`

	StockCreatedAt time.Time `json:"stock_created_at" gorm:"column:stock_created_at;not null;autoCreateTime"`
	StockUpdatedAt time.Time `json:"stock_updated_at" gorm:"column:stock_updated_at;not null;autoUpdateTime"`
}

func (StockModel) TableName() string { return "material_stocks" }

func (m *StockModel) BeforeCreate(tx *gorm.DB) error {
	if m.StockID == uuid.Nil {
		m.StockID = uuid.New()
	}
	return nil
}
