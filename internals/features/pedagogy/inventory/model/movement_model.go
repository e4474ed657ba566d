package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
)

// MovementType is a closed enumeration. Anything outside the six known kinds
// is rejected at the boundary instead of silently no-opping.
type MovementType string

const (
	MovementPurchase     MovementType = "PURCHASE"
	MovementAssignment   MovementType = "ASSIGNMENT"
	MovementReturn       MovementType = "RETURN"
	MovementReplacement  MovementType = "REPLACEMENT"
	MovementDamage       MovementType = "DAMAGE"
	MovementDecommission MovementType = "DECOMMISSION"
)

func ParseMovementType(raw string) (MovementType, error) {
	switch MovementType(raw) {
	case MovementPurchase, MovementAssignment, MovementReturn,
		MovementReplacement, MovementDamage, MovementDecommission:
		return MovementType(raw), nil
	default:
		return "", apperr.New(apperr.KindUnknownMovementType, "unknown movement type %q", raw)
	}
}

// MovementModel is one row of the append-only inventory ledger. Rows are never
// updated or deleted; the stock projection is derivable by replaying them in
// commit order.
type MovementModel struct {
	// PK
	MovementID uuid.UUID `json:"movement_id" gorm:"column:movement_id;type:uuid;primaryKey"`

	// Scope (tenant, year, material, level, optional class)
	MovementSchoolID       uuid.UUID  `json:"movement_school_id" gorm:"column:movement_school_id;type:uuid;not null;index:idx_movement_scope,priority:1"`
	MovementAcademicYearID uuid.UUID  `json:"movement_academic_year_id" gorm:"column:movement_academic_year_id;type:uuid;not null;index:idx_movement_scope,priority:2"`
	MovementMaterialID     uuid.UUID  `json:"movement_material_id" gorm:"column:movement_material_id;type:uuid;not null;index:idx_movement_scope,priority:3"`
	MovementLevelID        uuid.UUID  `json:"movement_level_id" gorm:"column:movement_level_id;type:uuid;not null;index:idx_movement_scope,priority:4"`
	MovementClassID        *uuid.UUID `json:"movement_class_id,omitempty" gorm:"column:movement_class_id;type:uuid;index:idx_movement_class"`

	MovementType     MovementType `json:"movement_type" gorm:"column:movement_type;type:varchar(20);not null;index:idx_movement_type"`
	MovementQuantity int          `json:"movement_quantity" gorm:"column:movement_quantity;not null"`

	MovementPerformedBy uuid.UUID  `json:"movement_performed_by" gorm:"column:movement_performed_by;type:uuid;not null"`
	MovementReference   *uuid.UUID `json:"movement_reference,omitempty" gorm:"column:movement_reference;type:uuid;index:idx_movement_reference"`
	MovementNotes       *string    `json:"movement_notes,omitempty" gorm:"column:movement_notes"`

	// Append-only: created_at only, no updated_at / deleted_at.
	MovementCreatedAt time.Time `json:"movement_created_at" gorm:"column:movement_created_at;not null;autoCreateTime;index:idx_movement_created"`
}

func (MovementModel) TableName() string { return "material_movements" }

func (m *MovementModel) BeforeCreate(tx *gorm.DB) error {
	if m.MovementID == uuid.Nil {
		m.MovementID = uuid.New()
	}
	return nil
}
