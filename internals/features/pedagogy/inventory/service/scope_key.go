package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScopeKey is the compound partition key every stock row and movement belongs
// to. Class is optional; nil means the level-wide pool.
type ScopeKey struct {
	SchoolID       uuid.UUID
	AcademicYearID uuid.UUID
	MaterialID     uuid.UUID
	LevelID        uuid.UUID
	ClassID        *uuid.UUID
}

// scopeWhere narrows a query to one scope key. prefix is the table's column
// prefix ("stock", "movement"). Class matches IS NULL for the level-wide pool.
func scopeWhere(q *gorm.DB, prefix string, key ScopeKey) *gorm.DB {
	q = q.Where(
		prefix+"_school_id = ? AND "+prefix+"_academic_year_id = ? AND "+prefix+"_material_id = ? AND "+prefix+"_level_id = ?",
		key.SchoolID, key.AcademicYearID, key.MaterialID, key.LevelID,
	)
	if key.ClassID != nil {
		return q.Where(prefix+"_class_id = ?", *key.ClassID)
	}
	return q.Where(prefix + "_class_id IS NULL")
}
