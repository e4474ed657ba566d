package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	"scolaris_backend/internals/constants"
	dto "scolaris_backend/internals/features/academics/academic_years/dto"
	model "scolaris_backend/internals/features/academics/academic_years/model"
	auditModel "scolaris_backend/internals/features/audit/model"
	auditService "scolaris_backend/internals/features/audit/service"
	helper "scolaris_backend/internals/helpers"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

// AcademicYearController manages the year lifecycle itself, so its writes do
// not demand an academic-year header the way inventory writes do.
type AcademicYearController struct {
	DB    *gorm.DB
	Audit *auditService.Recorder
}

var validate = validator.New()

var yearManagerRoles = []string{constants.RoleAdmin, constants.RolePromoter}

// =========================================================
// CREATE - POST /academic-years
// =========================================================
func (h *AcademicYearController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if !constants.RoleIn(sc.ActorRole, yearManagerRoles) {
		return helper.JsonAppError(c, apperr.New(apperr.KindForbidden, "role %q may not manage academic years", sc.ActorRole))
	}

	var req dto.AcademicYearCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	m := req.ToModel(sc.SchoolID)
	if err := h.DB.Create(m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create academic year")
	}

	h.Audit.Record(sc, auditModel.ActionCreate, "academic_year", m.AcademicYearID, map[string]any{
		"label": m.AcademicYearLabel,
	})

	return helper.JsonCreated(c, "Academic year created", dto.ToAcademicYearResponse(m))
}

// =========================================================
// UPDATE - PUT /academic-years/:id
// Covers open/close via academic_year_is_active.
// =========================================================
func (h *AcademicYearController) Update(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if !constants.RoleIn(sc.ActorRole, yearManagerRoles) {
		return helper.JsonAppError(c, apperr.New(apperr.KindForbidden, "role %q may not manage academic years", sc.ActorRole))
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid academic year id")
	}

	var req dto.AcademicYearUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var m model.AcademicYearModel
	if err := h.DB.First(&m, "academic_year_id = ? AND academic_year_school_id = ?", id, sc.SchoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonAppError(c, apperr.New(apperr.KindNotFound, "academic year not found"))
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch academic year")
	}

	updates := map[string]any{}
	if req.AcademicYearLabel != nil {
		updates["academic_year_label"] = *req.AcademicYearLabel
	}
	if req.AcademicYearStartsOn != nil {
		updates["academic_year_starts_on"] = *req.AcademicYearStartsOn
	}
	if req.AcademicYearEndsOn != nil {
		updates["academic_year_ends_on"] = *req.AcademicYearEndsOn
	}
	if req.AcademicYearIsActive != nil {
		updates["academic_year_is_active"] = *req.AcademicYearIsActive
	}
	if len(updates) == 0 {
		return helper.JsonOK(c, "Nothing to update", dto.ToAcademicYearResponse(&m))
	}

	if err := h.DB.Model(&m).Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update academic year")
	}

	h.Audit.Record(sc, auditModel.ActionUpdate, "academic_year", m.AcademicYearID, map[string]any{
		"label": m.AcademicYearLabel,
	})

	return helper.JsonUpdated(c, "Academic year updated", dto.ToAcademicYearResponse(&m))
}

// =========================================================
// GET BY ID - GET /academic-years/:id
// =========================================================
func (h *AcademicYearController) GetByID(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid academic year id")
	}

	var m model.AcademicYearModel
	if err := h.DB.First(&m, "academic_year_id = ? AND academic_year_school_id = ?", id, sc.SchoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonAppError(c, apperr.New(apperr.KindNotFound, "academic year not found"))
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch academic year")
	}

	return helper.JsonOK(c, "Academic year fetched", dto.ToAcademicYearResponse(&m))
}

// =========================================================
// LIST - GET /academic-years
// =========================================================
func (h *AcademicYearController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.Model(&model.AcademicYearModel{}).
		Where("academic_year_school_id = ?", sc.SchoolID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count academic years")
	}

	var items []model.AcademicYearModel
	if err := q.
		Order("academic_year_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&items).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch academic years")
	}

	return helper.JsonList(c, "Academic years fetched",
		dto.ToAcademicYearResponses(items),
		helper.BuildPagination(paging, total, len(items)))
}
