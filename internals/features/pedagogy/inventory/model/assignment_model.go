package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentModel records a teacher receiving material. Each assignment is
// causally tied to exactly one ASSIGNMENT movement; the movement carries the
// assignment id as its reference and the assignment stores the movement id
// back for traceability.
type AssignmentModel struct {
	// PK
	AssignmentID uuid.UUID `json:"assignment_id" gorm:"column:assignment_id;type:uuid;primaryKey"`

	// Scope
	AssignmentSchoolID       uuid.UUID  `json:"assignment_school_id" gorm:"column:assignment_school_id;type:uuid;not null;index:idx_assignment_school"`
	AssignmentAcademicYearID uuid.UUID  `json:"assignment_academic_year_id" gorm:"column:assignment_academic_year_id;type:uuid;not null;index:idx_assignment_year"`
	AssignmentMaterialID     uuid.UUID  `json:"assignment_material_id" gorm:"column:assignment_material_id;type:uuid;not null;index:idx_assignment_material"`
	AssignmentLevelID        uuid.UUID  `json:"assignment_level_id" gorm:"column:assignment_level_id;type:uuid;not null"`
	AssignmentClassID        *uuid.UUID `json:"assignment_class_id,omitempty" gorm:"column:assignment_class_id;type:uuid"`

	AssignmentTeacherID uuid.UUID `json:"assignment_teacher_id" gorm:"column:assignment_teacher_id;type:uuid;not null;index:idx_assignment_teacher"`
	AssignmentQuantity  int       `json:"assignment_quantity" gorm:"column:assignment_quantity;not null"`

	// Condition of the material at issue (new / good / worn ...)
	AssignmentConditionAtIssue string  `json:"assignment_condition_at_issue" gorm:"column:assignment_condition_at_issue;type:varchar(40);not null"`
	AssignmentNotes            *string `json:"assignment_notes,omitempty" gorm:"column:assignment_notes"`

	// Ledger linkage
	AssignmentMovementID *uuid.UUID `json:"assignment_movement_id,omitempty" gorm:"column:assignment_movement_id;type:uuid;index:idx_assignment_movement"`

	// Signature: one-way, terminal
	AssignmentIsSigned bool       `json:"assignment_is_signed" gorm:"column:assignment_is_signed;not null;default:false"`
	AssignmentSignedAt *time.Time `json:"assignment_signed_at,omitempty" gorm:"column:assignment_signed_at"`
	AssignmentSignedBy *uuid.UUID `json:"assignment_signed_by,omitempty" gorm:"column:assignment_signed_by;type:uuid"`

	AssignmentCreatedAt time.Time      `json:"assignment_created_at" gorm:"column:assignment_created_at;not null;autoCreateTime"`
	AssignmentUpdatedAt time.Time      `json:"assignment_updated_at" gorm:"column:assignment_updated_at;not null;autoUpdateTime"`
	AssignmentDeletedAt gorm.DeletedAt `json:"assignment_deleted_at,omitempty" gorm:"column:assignment_deleted_at;index"`
}

func (AssignmentModel) TableName() string { return "material_assignments" }

func (m *AssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.AssignmentID == uuid.Nil {
		m.AssignmentID = uuid.New()
	}
	return nil
}
