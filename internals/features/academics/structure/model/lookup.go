package model

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HasActiveTeacherAffiliation reports whether the teacher is actively tied to
// the school level for the academic year.
func HasActiveTeacherAffiliation(db *gorm.DB, schoolID, teacherID, levelID, yearID uuid.UUID) (bool, error) {
	var cnt int64
	err := db.Model(&TeacherAffiliationModel{}).
		Where(`
			teacher_affiliation_school_id = ?
			AND teacher_affiliation_teacher_id = ?
			AND teacher_affiliation_level_id = ?
			AND teacher_affiliation_academic_year_id = ?
			AND teacher_affiliation_is_active = TRUE
		`, schoolID, teacherID, levelID, yearID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ClassBelongsToLevel verifies a class reference against its level, tenant scoped.
func ClassBelongsToLevel(db *gorm.DB, schoolID, classID, levelID uuid.UUID) (bool, error) {
	var class ClassRoomModel
	err := db.
		Where("class_room_id = ? AND class_room_school_id = ?", classID, schoolID).
		First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return class.ClassRoomLevelID == levelID, nil
}
