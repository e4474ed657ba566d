package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"scolaris_backend/internals/apperr"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
	service "scolaris_backend/internals/features/pedagogy/inventory/service"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

/* ===============================
   Requests
=================================*/

// ScopeRequest carries the scope-key part shared by movement and assignment
// payloads. Class is optional (level-wide pool when absent).
type ScopeRequest struct {
	MaterialID string  `json:"material_id" validate:"required,uuid"`
	LevelID    string  `json:"level_id" validate:"required,uuid"`
	ClassID    *string `json:"class_id,omitempty" validate:"omitempty,uuid"`
}

// ToScopeKey binds the payload scope to the validated request context; tenant
// and year always come from the context, never from the body.
func (r ScopeRequest) ToScopeKey(sc *helperAuth.SchoolContext) (service.ScopeKey, error) {
	materialID, err := uuid.Parse(strings.TrimSpace(r.MaterialID))
	if err != nil {
		return service.ScopeKey{}, apperr.New(apperr.KindInvalidContext, "material_id is not a valid uuid")
	}
	levelID, err := uuid.Parse(strings.TrimSpace(r.LevelID))
	if err != nil {
		return service.ScopeKey{}, apperr.New(apperr.KindInvalidContext, "level_id is not a valid uuid")
	}
	key := service.ScopeKey{
		SchoolID:       sc.SchoolID,
		AcademicYearID: sc.AcademicYearID,
		MaterialID:     materialID,
		LevelID:        levelID,
	}
	if r.ClassID != nil && strings.TrimSpace(*r.ClassID) != "" {
		classID, err := uuid.Parse(strings.TrimSpace(*r.ClassID))
		if err != nil {
			return service.ScopeKey{}, apperr.New(apperr.KindInvalidContext, "class_id is not a valid uuid")
		}
		key.ClassID = &classID
	}
	return key, nil
}

type MovementCreateRequest struct {
	ScopeRequest
	MovementType string  `json:"movement_type" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	Reference    *string `json:"reference,omitempty" validate:"omitempty,uuid"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (r *MovementCreateRequest) Normalize() {
	r.MovementType = strings.ToUpper(strings.TrimSpace(r.MovementType))
	if r.Notes != nil {
		n := strings.TrimSpace(*r.Notes)
		r.Notes = &n
	}
}

type AssignmentCreateRequest struct {
	ScopeRequest
	TeacherID        string  `json:"teacher_id" validate:"required,uuid"`
	Quantity         int     `json:"quantity" validate:"required,gt=0"`
	ConditionAtIssue string  `json:"condition_at_issue" validate:"required,max=40"`
	Notes            *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (r *AssignmentCreateRequest) Normalize() {
	r.ConditionAtIssue = strings.ToLower(strings.TrimSpace(r.ConditionAtIssue))
	if r.Notes != nil {
		n := strings.TrimSpace(*r.Notes)
		r.Notes = &n
	}
}

/* ===============================
   Responses
=================================*/

type MovementResponse struct {
	MovementID     uuid.UUID  `json:"movement_id"`
	SchoolID       uuid.UUID  `json:"school_id"`
	AcademicYearID uuid.UUID  `json:"academic_year_id"`
	MaterialID     uuid.UUID  `json:"material_id"`
	LevelID        uuid.UUID  `json:"level_id"`
	ClassID        *uuid.UUID `json:"class_id,omitempty"`
	MovementType   string     `json:"movement_type"`
	Quantity       int        `json:"quantity"`
	PerformedBy    uuid.UUID  `json:"performed_by"`
	Reference      *uuid.UUID `json:"reference,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToMovementResponse(m *model.MovementModel) MovementResponse {
	return MovementResponse{
		MovementID:     m.MovementID,
		SchoolID:       m.MovementSchoolID,
		AcademicYearID: m.MovementAcademicYearID,
		MaterialID:     m.MovementMaterialID,
		LevelID:        m.MovementLevelID,
		ClassID:        m.MovementClassID,
		MovementType:   string(m.MovementType),
		Quantity:       m.MovementQuantity,
		PerformedBy:    m.MovementPerformedBy,
		Reference:      m.MovementReference,
		Notes:          m.MovementNotes,
		CreatedAt:      m.MovementCreatedAt,
	}
}

func ToMovementResponses(items []model.MovementModel) []MovementResponse {
	out := make([]MovementResponse, 0, len(items))
	for i := range items {
		out = append(out, ToMovementResponse(&items[i]))
	}
	return out
}

type StockResponse struct {
	SchoolID          uuid.UUID  `json:"school_id"`
	AcademicYearID    uuid.UUID  `json:"academic_year_id"`
	MaterialID        uuid.UUID  `json:"material_id"`
	LevelID           uuid.UUID  `json:"level_id"`
	ClassID           *uuid.UUID `json:"class_id,omitempty"`
	QuantityTotal     int        `json:"quantity_total"`
	QuantityAvailable int        `json:"quantity_available"`
}

func ToStockResponse(m *model.StockModel) StockResponse {
	return StockResponse{
		SchoolID:          m.StockSchoolID,
		AcademicYearID:    m.StockAcademicYearID,
		MaterialID:        m.StockMaterialID,
		LevelID:           m.StockLevelID,
		ClassID:           m.StockClassID,
		QuantityTotal:     m.StockQuantityTotal,
		QuantityAvailable: m.StockQuantityAvailable,
	}
}

func ToStockResponses(items []model.StockModel) []StockResponse {
	out := make([]StockResponse, 0, len(items))
	for i := range items {
		out = append(out, ToStockResponse(&items[i]))
	}
	return out
}

type AssignmentResponse struct {
	AssignmentID     uuid.UUID  `json:"assignment_id"`
	SchoolID         uuid.UUID  `json:"school_id"`
	AcademicYearID   uuid.UUID  `json:"academic_year_id"`
	MaterialID       uuid.UUID  `json:"material_id"`
	LevelID          uuid.UUID  `json:"level_id"`
	ClassID          *uuid.UUID `json:"class_id,omitempty"`
	TeacherID        uuid.UUID  `json:"teacher_id"`
	Quantity         int        `json:"quantity"`
	ConditionAtIssue string     `json:"condition_at_issue"`
	Notes            *string    `json:"notes,omitempty"`
	MovementID       *uuid.UUID `json:"movement_id,omitempty"`
	IsSigned         bool       `json:"is_signed"`
	SignedAt         *time.Time `json:"signed_at,omitempty"`
	SignedBy         *uuid.UUID `json:"signed_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func ToAssignmentResponse(m *model.AssignmentModel) AssignmentResponse {
	return AssignmentResponse{
		AssignmentID:     m.AssignmentID,
		SchoolID:         m.AssignmentSchoolID,
		AcademicYearID:   m.AssignmentAcademicYearID,
		MaterialID:       m.AssignmentMaterialID,
		LevelID:          m.AssignmentLevelID,
		ClassID:          m.AssignmentClassID,
		TeacherID:        m.AssignmentTeacherID,
		Quantity:         m.AssignmentQuantity,
		ConditionAtIssue: m.AssignmentConditionAtIssue,
		Notes:            m.AssignmentNotes,
		MovementID:       m.AssignmentMovementID,
		IsSigned:         m.AssignmentIsSigned,
		SignedAt:         m.AssignmentSignedAt,
		SignedBy:         m.AssignmentSignedBy,
		CreatedAt:        m.AssignmentCreatedAt,
	}
}

func ToAssignmentResponses(items []model.AssignmentModel) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(items))
	for i := range items {
		out = append(out, ToAssignmentResponse(&items[i]))
	}
	return out
}
