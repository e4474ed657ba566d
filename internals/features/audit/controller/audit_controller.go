package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	"scolaris_backend/internals/constants"
	model "scolaris_backend/internals/features/audit/model"
	helper "scolaris_backend/internals/helpers"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

type AuditController struct {
	DB *gorm.DB
}

// =========================================================
// LIST - GET /audit?resource_type=&actor_id=
// Top administrator only.
// =========================================================
func (h *AuditController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if sc.ActorRole != constants.RoleAdmin {
		return helper.JsonAppError(c, apperr.New(apperr.KindForbidden, "only the top administrator may read the audit trail"))
	}

	q := h.DB.Model(&model.AuditEntryModel{}).
		Where("audit_school_id = ?", sc.SchoolID)

	if rt := strings.TrimSpace(c.Query("resource_type")); rt != "" {
		q = q.Where("audit_resource_type = ?", rt)
	}
	if raw := strings.TrimSpace(c.Query("actor_id")); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonAppError(c, apperr.New(apperr.KindInvalidContext, "actor_id is not a valid uuid"))
		}
		q = q.Where("audit_actor_id = ?", actorID)
	}

	paging := helper.ResolvePaging(c, 50, 200)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count audit entries")
	}

	var items []model.AuditEntryModel
	if err := q.
		Order("audit_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&items).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch audit entries")
	}

	return helper.JsonList(c, "Audit entries fetched",
		items,
		helper.BuildPagination(paging, total, len(items)))
}
