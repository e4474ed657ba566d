package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// School levels (e.g. maternelle, primaire, collège) partition the material
// catalog and the stock scope; classes refine a level.

type SchoolLevelModel struct {
	SchoolLevelID       uuid.UUID `json:"school_level_id" gorm:"column:school_level_id;type:uuid;primaryKey"`
	SchoolLevelSchoolID uuid.UUID `json:"school_level_school_id" gorm:"column:school_level_school_id;type:uuid;not null;index:idx_level_school"`
	SchoolLevelName     string    `json:"school_level_name" gorm:"column:school_level_name;type:varchar(80);not null"`
	SchoolLevelIsActive bool      `json:"school_level_is_active" gorm:"column:school_level_is_active;not null;default:true"`

	SchoolLevelCreatedAt time.Time      `json:"school_level_created_at" gorm:"column:school_level_created_at;not null;autoCreateTime"`
	SchoolLevelUpdatedAt time.Time      `json:"school_level_updated_at" gorm:"column:school_level_updated_at;not null;autoUpdateTime"`
	SchoolLevelDeletedAt gorm.DeletedAt `json:"school_level_deleted_at,omitempty" gorm:"column:school_level_deleted_at;index"`
}

func (SchoolLevelModel) TableName() string { return "school_levels" }

func (m *SchoolLevelModel) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolLevelID == uuid.Nil {
		m.SchoolLevelID = uuid.New()
	}
	return nil
}

type ClassRoomModel struct {
	ClassRoomID       uuid.UUID `json:"class_room_id" gorm:"column:class_room_id;type:uuid;primaryKey"`
	ClassRoomSchoolID uuid.UUID `json:"class_room_school_id" gorm:"column:class_room_school_id;type:uuid;not null;index:idx_class_school"`
	ClassRoomLevelID  uuid.UUID `json:"class_room_level_id" gorm:"column:class_room_level_id;type:uuid;not null;index:idx_class_level"`
	ClassRoomName     string    `json:"class_room_name" gorm:"column:class_room_name;type:varchar(80);not null"`

	ClassRoomCreatedAt time.Time      `json:"class_room_created_at" gorm:"column:class_room_created_at;not null;autoCreateTime"`
	ClassRoomUpdatedAt time.Time      `json:"class_room_updated_at" gorm:"column:class_room_updated_at;not null;autoUpdateTime"`
	ClassRoomDeletedAt gorm.DeletedAt `json:"class_room_deleted_at,omitempty" gorm:"column:class_room_deleted_at;index"`
}

func (ClassRoomModel) TableName() string { return "class_rooms" }

func (m *ClassRoomModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassRoomID == uuid.Nil {
		m.ClassRoomID = uuid.New()
	}
	return nil
}

// TeacherAffiliationModel ties a teacher user to a school level for one
// academic year. Assignments require an active affiliation on the target level.
type TeacherAffiliationModel struct {
	TeacherAffiliationID             uuid.UUID `json:"teacher_affiliation_id" gorm:"column:teacher_affiliation_id;type:uuid;primaryKey"`
	TeacherAffiliationSchoolID       uuid.UUID `json:"teacher_affiliation_school_id" gorm:"column:teacher_affiliation_school_id;type:uuid;not null;index:idx_ta_school"`
	TeacherAffiliationTeacherID      uuid.UUID `json:"teacher_affiliation_teacher_id" gorm:"column:teacher_affiliation_teacher_id;type:uuid;not null;index:idx_ta_teacher"`
	TeacherAffiliationLevelID        uuid.UUID `json:"teacher_affiliation_level_id" gorm:"column:teacher_affiliation_level_id;type:uuid;not null;index:idx_ta_level"`
	TeacherAffiliationAcademicYearID uuid.UUID `json:"teacher_affiliation_academic_year_id" gorm:"column:teacher_affiliation_academic_year_id;type:uuid;not null;index:idx_ta_year"`
	TeacherAffiliationIsActive       bool      `json:"teacher_affiliation_is_active" gorm:"column:teacher_affiliation_is_active;not null;default:true"`

	TeacherAffiliationCreatedAt time.Time      `json:"teacher_affiliation_created_at" gorm:"column:teacher_affiliation_created_at;not null;autoCreateTime"`
	TeacherAffiliationUpdatedAt time.Time      `json:"teacher_affiliation_updated_at" gorm:"column:teacher_affiliation_updated_at;not null;autoUpdateTime"`
	TeacherAffiliationDeletedAt gorm.DeletedAt `json:"teacher_affiliation_deleted_at,omitempty" gorm:"column:teacher_affiliation_deleted_at;index"`
}

func (TeacherAffiliationModel) TableName() string { return "teacher_affiliations" }

func (m *TeacherAffiliationModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeacherAffiliationID == uuid.Nil {
		m.TeacherAffiliationID = uuid.New()
	}
	return nil
}
