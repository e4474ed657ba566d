package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	auditModel "scolaris_backend/internals/features/audit/model"
	auditService "scolaris_backend/internals/features/audit/service"
	inventoryModel "scolaris_backend/internals/features/pedagogy/inventory/model"
	dto "scolaris_backend/internals/features/pedagogy/materials/dto"
	model "scolaris_backend/internals/features/pedagogy/materials/model"
	helper "scolaris_backend/internals/helpers"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

type MaterialController struct {
	DB    *gorm.DB
	Audit *auditService.Recorder
}

var validate = validator.New()

// =========================================================
// CREATE - POST /materials
// =========================================================
func (h *MaterialController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbWrite); err != nil {
		return helper.JsonAppError(c, err)
	}

	var req dto.MaterialCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	levelID, err := uuid.Parse(strings.TrimSpace(req.MaterialLevelID))
	if err != nil {
		return helper.JsonAppError(c, apperr.New(apperr.KindInvalidContext, "material_level_id is not a valid uuid"))
	}

	// code unique per tenant while alive
	var cnt int64
	if err := h.DB.Model(&model.MaterialModel{}).
		Where("material_school_id = ? AND material_code = ?", sc.SchoolID, req.MaterialCode).
		Count(&cnt).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check material code")
	}
	if cnt > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Material code already in use")
	}

	m := req.ToModel(sc.SchoolID, levelID)
	if err := h.DB.Create(m).Error; err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") {
			return helper.JsonError(c, fiber.StatusConflict, "Material code already in use")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create material")
	}

	h.Audit.Record(sc, auditModel.ActionCreate, "material", m.MaterialID, map[string]any{
		"code": m.MaterialCode,
		"name": m.MaterialName,
	})

	return helper.JsonCreated(c, "Material created", dto.ToMaterialResponse(m))
}

// =========================================================
// UPDATE - PUT /materials/:id
// =========================================================
func (h *MaterialController) Update(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbWrite); err != nil {
		return helper.JsonAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid material id")
	}

	var req dto.MaterialUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var m model.MaterialModel
	if err := h.DB.First(&m, "material_id = ? AND material_school_id = ?", id, sc.SchoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonAppError(c, apperr.New(apperr.KindNotFound, "material not found"))
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch material")
	}

	updates := map[string]any{}
	if req.MaterialName != nil {
		updates["material_name"] = *req.MaterialName
	}
	if req.MaterialCategory != nil {
		updates["material_category"] = *req.MaterialCategory
	}
	if req.MaterialTags != nil {
		updates["material_tags"] = pq.StringArray(req.MaterialTags)
	}
	if req.MaterialIsActive != nil {
		updates["material_is_active"] = *req.MaterialIsActive
	}
	if len(updates) == 0 {
		return helper.JsonOK(c, "Nothing to update", dto.ToMaterialResponse(&m))
	}

	if err := h.DB.Model(&m).Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update material")
	}

	h.Audit.Record(sc, auditModel.ActionUpdate, "material", m.MaterialID, map[string]any{
		"fields": updateKeys(updates),
	})

	return helper.JsonUpdated(c, "Material updated", dto.ToMaterialResponse(&m))
}

// =========================================================
// DELETE - DELETE /materials/:id
// Deactivates; the row is only soft-deleted when nothing references it.
// =========================================================
func (h *MaterialController) Delete(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbDelete); err != nil {
		return helper.JsonAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid material id")
	}

	var m model.MaterialModel
	if err := h.DB.First(&m, "material_id = ? AND material_school_id = ?", id, sc.SchoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonAppError(c, apperr.New(apperr.KindNotFound, "material not found"))
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch material")
	}

	var refs int64
	if err := h.DB.Model(&inventoryModel.MovementModel{}).
		Where("movement_material_id = ?", m.MaterialID).
		Count(&refs).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to check references")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&m).Update("material_is_active", false).Error; err != nil {
			return err
		}
		if refs == 0 {
			// unreferenced: the row may disappear from catalog listings
			return tx.Delete(&m).Error
		}
		return nil
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete material")
	}

	h.Audit.Record(sc, auditModel.ActionDelete, "material", m.MaterialID, map[string]any{
		"code":           m.MaterialCode,
		"had_references": refs > 0,
	})

	return helper.JsonDeleted(c, "Material deactivated", dto.ToMaterialResponse(&m))
}

// =========================================================
// GET BY ID - GET /materials/:id
// =========================================================
func (h *MaterialController) GetByID(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbRead); err != nil {
		return helper.JsonAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid material id")
	}

	var m model.MaterialModel
	if err := h.DB.First(&m, "material_id = ? AND material_school_id = ?", id, sc.SchoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonAppError(c, apperr.New(apperr.KindNotFound, "material not found"))
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch material")
	}

	return helper.JsonOK(c, "Material fetched", dto.ToMaterialResponse(&m))
}

// =========================================================
// LIST - GET /materials?level_id=&active=&q=
// =========================================================
func (h *MaterialController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbRead); err != nil {
		return helper.JsonAppError(c, err)
	}

	q := h.DB.Model(&model.MaterialModel{}).
		Where("material_school_id = ?", sc.SchoolID)

	if raw := strings.TrimSpace(c.Query("level_id")); raw != "" {
		levelID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonAppError(c, apperr.New(apperr.KindInvalidContext, "level_id is not a valid uuid"))
		}
		q = q.Where("material_level_id = ?", levelID)
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		q = q.Where("material_is_active = ?", raw == "true" || raw == "1")
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(material_name) LIKE ? OR lower(material_code) LIKE ?", like, like)
	}

	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count materials")
	}

	var items []model.MaterialModel
	if err := q.
		Order("material_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&items).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch materials")
	}

	return helper.JsonList(c, "Materials fetched",
		dto.ToMaterialResponses(items),
		helper.BuildPagination(paging, total, len(items)))
}

func updateKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
