package service

import (
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	model "scolaris_backend/internals/features/audit/model"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

// Recorder persists audit entries for successful writes. Fire-and-forget: the
// caller's transaction is already committed when Record runs, and a failed
// audit insert is logged and swallowed.
type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// Record schedules an audit write without blocking the request.
func (r *Recorder) Record(sc *helperAuth.SchoolContext, action, resourceType string, resourceID uuid.UUID, details map[string]any) {
	go func() {
		if err := r.RecordSync(sc, action, resourceType, resourceID, details); err != nil {
			logrus.WithFields(logrus.Fields{
				"school_id":     sc.SchoolID,
				"resource_type": resourceType,
				"resource_id":   resourceID,
			}).Warnf("audit write failed: %v", err)
		}
	}()
}

// RecordSync does the actual insert; exposed for tests.
func (r *Recorder) RecordSync(sc *helperAuth.SchoolContext, action, resourceType string, resourceID uuid.UUID, details map[string]any) error {
	ctx := map[string]any{
		"actor_role": sc.ActorRole,
	}
	if sc.AcademicYearID != uuid.Nil {
		ctx["academic_year_id"] = sc.AcademicYearID.String()
	}
	for k, v := range details {
		ctx[k] = v
	}

	payload, err := sonic.Marshal(ctx)
	if err != nil {
		return err
	}

	entry := model.AuditEntryModel{
		AuditSchoolID:     sc.SchoolID,
		AuditActorID:      sc.ActorID,
		AuditAction:       action,
		AuditResourceType: resourceType,
		AuditResourceID:   resourceID,
		AuditContext:      datatypes.JSON(payload),
	}
	return r.DB.Create(&entry).Error
}
