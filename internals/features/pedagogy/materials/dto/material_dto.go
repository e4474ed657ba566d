package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	model "scolaris_backend/internals/features/pedagogy/materials/model"
)

type MaterialCreateRequest struct {
	MaterialCode     string   `json:"material_code" validate:"required,max=64"`
	MaterialName     string   `json:"material_name" validate:"required,max=160"`
	MaterialCategory *string  `json:"material_category,omitempty" validate:"omitempty,max=80"`
	MaterialTags     []string `json:"material_tags,omitempty" validate:"omitempty,dive,max=40"`
	MaterialLevelID  string   `json:"material_level_id" validate:"required,uuid"`
}

func (r *MaterialCreateRequest) Normalize() {
	r.MaterialCode = strings.ToUpper(strings.TrimSpace(r.MaterialCode))
	r.MaterialName = strings.TrimSpace(r.MaterialName)
	if r.MaterialCategory != nil {
		c := strings.TrimSpace(*r.MaterialCategory)
		r.MaterialCategory = &c
	}
	for i := range r.MaterialTags {
		r.MaterialTags[i] = strings.ToLower(strings.TrimSpace(r.MaterialTags[i]))
	}
}

func (r *MaterialCreateRequest) ToModel(schoolID, levelID uuid.UUID) *model.MaterialModel {
	return &model.MaterialModel{
		MaterialSchoolID: schoolID,
		MaterialCode:     r.MaterialCode,
		MaterialName:     r.MaterialName,
		MaterialCategory: r.MaterialCategory,
		MaterialTags:     pq.StringArray(r.MaterialTags),
		MaterialLevelID:  levelID,
		MaterialIsActive: true,
	}
}

// Pointer fields: only what the client sends gets updated.
type MaterialUpdateRequest struct {
	MaterialName     *string  `json:"material_name,omitempty" validate:"omitempty,max=160"`
	MaterialCategory *string  `json:"material_category,omitempty" validate:"omitempty,max=80"`
	MaterialTags     []string `json:"material_tags,omitempty" validate:"omitempty,dive,max=40"`
	MaterialIsActive *bool    `json:"material_is_active,omitempty"`
}

func (r *MaterialUpdateRequest) Normalize() {
	if r.MaterialName != nil {
		n := strings.TrimSpace(*r.MaterialName)
		r.MaterialName = &n
	}
	if r.MaterialCategory != nil {
		c := strings.TrimSpace(*r.MaterialCategory)
		r.MaterialCategory = &c
	}
	for i := range r.MaterialTags {
		r.MaterialTags[i] = strings.ToLower(strings.TrimSpace(r.MaterialTags[i]))
	}
}

type MaterialResponse struct {
	MaterialID uuid.UUID `json:"material_id"`
	SchoolID   uuid.UUID `json:"school_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Category   *string   `json:"category,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	LevelID    uuid.UUID `json:"level_id"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToMaterialResponse(m *model.MaterialModel) MaterialResponse {
	return MaterialResponse{
		MaterialID: m.MaterialID,
		SchoolID:   m.MaterialSchoolID,
		Code:       m.MaterialCode,
		Name:       m.MaterialName,
		Category:   m.MaterialCategory,
		Tags:       []string(m.MaterialTags),
		LevelID:    m.MaterialLevelID,
		IsActive:   m.MaterialIsActive,
		CreatedAt:  m.MaterialCreatedAt,
		UpdatedAt:  m.MaterialUpdatedAt,
	}
}

func ToMaterialResponses(items []model.MaterialModel) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(items))
	for i := range items {
		out = append(out, ToMaterialResponse(&items[i]))
	}
	return out
}
