package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditEntryModel is the append-only trail of successful writes. Best-effort:
// a failed audit insert never rolls back the business operation.
type AuditEntryModel struct {
	AuditID       uuid.UUID `json:"audit_id" gorm:"column:audit_id;type:uuid;primaryKey"`
	AuditSchoolID uuid.UUID `json:"audit_school_id" gorm:"column:audit_school_id;type:uuid;not null;index:idx_audit_school"`
	AuditActorID  uuid.UUID `json:"audit_actor_id" gorm:"column:audit_actor_id;type:uuid;not null;index:idx_audit_actor"`

	AuditAction       string    `json:"audit_action" gorm:"column:audit_action;type:varchar(16);not null"`
	AuditResourceType string    `json:"audit_resource_type" gorm:"column:audit_resource_type;type:varchar(40);not null;index:idx_audit_resource"`
	AuditResourceID   uuid.UUID `json:"audit_resource_id" gorm:"column:audit_resource_id;type:uuid;not null;index:idx_audit_resource_id"`

	// Validated request context plus operation details, as JSON.
	AuditContext datatypes.JSON `json:"audit_context,omitempty" gorm:"column:audit_context;type:jsonb"`

	AuditCreatedAt time.Time `json:"audit_created_at" gorm:"column:audit_created_at;not null;autoCreateTime;index:idx_audit_created"`
}

func (AuditEntryModel) TableName() string { return "audit_entries" }

func (m *AuditEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.AuditID == uuid.Nil {
		m.AuditID = uuid.New()
	}
	return nil
}
