package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	model "scolaris_backend/internals/features/academics/academic_years/model"
)

type AcademicYearCreateRequest struct {
	AcademicYearLabel    string     `json:"academic_year_label" validate:"required,max=32"`
	AcademicYearStartsOn *time.Time `json:"academic_year_starts_on,omitempty"`
	AcademicYearEndsOn   *time.Time `json:"academic_year_ends_on,omitempty"`
	AcademicYearIsActive bool       `json:"academic_year_is_active"`
}

func (r *AcademicYearCreateRequest) Normalize() {
	r.AcademicYearLabel = strings.TrimSpace(r.AcademicYearLabel)
}

func (r *AcademicYearCreateRequest) ToModel(schoolID uuid.UUID) *model.AcademicYearModel {
	return &model.AcademicYearModel{
		AcademicYearSchoolID: schoolID,
		AcademicYearLabel:    r.AcademicYearLabel,
		AcademicYearStartsOn: r.AcademicYearStartsOn,
		AcademicYearEndsOn:   r.AcademicYearEndsOn,
		AcademicYearIsActive: r.AcademicYearIsActive,
	}
}

type AcademicYearUpdateRequest struct {
	AcademicYearLabel    *string    `json:"academic_year_label,omitempty" validate:"omitempty,max=32"`
	AcademicYearStartsOn *time.Time `json:"academic_year_starts_on,omitempty"`
	AcademicYearEndsOn   *time.Time `json:"academic_year_ends_on,omitempty"`
	AcademicYearIsActive *bool      `json:"academic_year_is_active,omitempty"`
}

func (r *AcademicYearUpdateRequest) Normalize() {
	if r.AcademicYearLabel != nil {
		l := strings.TrimSpace(*r.AcademicYearLabel)
		r.AcademicYearLabel = &l
	}
}

type AcademicYearResponse struct {
	AcademicYearID uuid.UUID  `json:"academic_year_id"`
	SchoolID       uuid.UUID  `json:"school_id"`
	Label          string     `json:"label"`
	StartsOn       *time.Time `json:"starts_on,omitempty"`
	EndsOn         *time.Time `json:"ends_on,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

func ToAcademicYearResponse(m *model.AcademicYearModel) AcademicYearResponse {
	return AcademicYearResponse{
		AcademicYearID: m.AcademicYearID,
		SchoolID:       m.AcademicYearSchoolID,
		Label:          m.AcademicYearLabel,
		StartsOn:       m.AcademicYearStartsOn,
		EndsOn:         m.AcademicYearEndsOn,
		IsActive:       m.AcademicYearIsActive,
		CreatedAt:      m.AcademicYearCreatedAt,
	}
}

func ToAcademicYearResponses(items []model.AcademicYearModel) []AcademicYearResponse {
	out := make([]AcademicYearResponse, 0, len(items))
	for i := range items {
		out = append(out, ToAcademicYearResponse(&items[i]))
	}
	return out
}
