package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AcademicYearModel struct {
	// PK
	AcademicYearID uuid.UUID `json:"academic_year_id" gorm:"column:academic_year_id;type:uuid;primaryKey"`

	// Tenant
	AcademicYearSchoolID uuid.UUID `json:"academic_year_school_id" gorm:"column:academic_year_school_id;type:uuid;not null;index:idx_ay_school"`

	// e.g. "2025-2026"
	AcademicYearLabel string `json:"academic_year_label" gorm:"column:academic_year_label;type:varchar(32);not null"`

	AcademicYearStartsOn *time.Time `json:"academic_year_starts_on,omitempty" gorm:"column:academic_year_starts_on;type:date"`
	AcademicYearEndsOn   *time.Time `json:"academic_year_ends_on,omitempty" gorm:"column:academic_year_ends_on;type:date"`

	// Only active years accept writes (top admin may override).
	AcademicYearIsActive bool `json:"academic_year_is_active" gorm:"column:academic_year_is_active;not null;default:false;index:idx_ay_active"`

	AcademicYearCreatedAt time.Time      `json:"academic_year_created_at" gorm:"column:academic_year_created_at;not null;autoCreateTime"`
	AcademicYearUpdatedAt time.Time      `json:"academic_year_updated_at" gorm:"column:academic_year_updated_at;not null;autoUpdateTime"`
	AcademicYearDeletedAt gorm.DeletedAt `json:"academic_year_deleted_at,omitempty" gorm:"column:academic_year_deleted_at;index"`
}

func (AcademicYearModel) TableName() string { return "academic_years" }

func (m *AcademicYearModel) BeforeCreate(tx *gorm.DB) error {
	if m.AcademicYearID == uuid.Nil {
		m.AcademicYearID = uuid.New()
	}
	return nil
}
