package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	"scolaris_backend/internals/constants"
	auditModel "scolaris_backend/internals/features/audit/model"
	auditService "scolaris_backend/internals/features/audit/service"
	dto "scolaris_backend/internals/features/pedagogy/inventory/dto"
	service "scolaris_backend/internals/features/pedagogy/inventory/service"
	helper "scolaris_backend/internals/helpers"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

type StockController struct {
	DB     *gorm.DB
	Ledger *service.LedgerService
	Audit  *auditService.Recorder
}

// =========================================================
// GET - GET /inventory/stocks?material_id=&level_id=&class_id=
// Snapshot for one scope key; zero-valued when no movement happened yet.
// =========================================================
func (h *StockController) Get(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbRead); err != nil {
		return helper.JsonAppError(c, err)
	}
	if sc.AcademicYearID == uuid.Nil {
		return helper.JsonAppError(c, apperr.New(apperr.KindMissingContext, "academic year id is required"))
	}

	key, err := scopeFromQuery(c, sc)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	stock, err := h.Ledger.GetStock(key)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Stock fetched", dto.ToStockResponse(stock))
}

// =========================================================
// LIST - GET /inventory/stocks/list?level_id=
// =========================================================
func (h *StockController) List(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbRead); err != nil {
		return helper.JsonAppError(c, err)
	}
	if sc.AcademicYearID == uuid.Nil {
		return helper.JsonAppError(c, apperr.New(apperr.KindMissingContext, "academic year id is required"))
	}

	var levelID *uuid.UUID
	if id, ok, err := queryUUID(c, "level_id"); err != nil {
		return helper.JsonAppError(c, err)
	} else if ok {
		levelID = &id
	}

	paging := helper.ResolvePaging(c, 20, 100)
	items, total, err := h.Ledger.ListStocks(sc.SchoolID, sc.AcademicYearID, levelID, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Stocks fetched",
		dto.ToStockResponses(items),
		helper.BuildPagination(paging, total, len(items)))
}

// =========================================================
// REBUILD - POST /inventory/stocks/rebuild
// Replays the ledger for one scope key from a zero baseline. Top admin only.
// =========================================================
func (h *StockController) Rebuild(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if sc.ActorRole != constants.RoleAdmin {
		return helper.JsonAppError(c, apperr.New(apperr.KindForbidden, "only the top administrator may rebuild stock projections"))
	}

	var req dto.ScopeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	key, err := req.ToScopeKey(sc)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	stock, err := h.Ledger.Rebuild(key)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	h.Audit.Record(sc, auditModel.ActionUpdate, "material_stock", stock.StockID, map[string]any{
		"operation":   "rebuild",
		"material_id": key.MaterialID.String(),
	})

	return helper.JsonUpdated(c, "Stock projection rebuilt", dto.ToStockResponse(stock))
}

func scopeFromQuery(c *fiber.Ctx, sc *helperAuth.SchoolContext) (service.ScopeKey, error) {
	materialID, ok, err := queryUUID(c, "material_id")
	if err != nil {
		return service.ScopeKey{}, err
	}
	if !ok {
		return service.ScopeKey{}, apperr.New(apperr.KindMissingContext, "material_id is required")
	}
	levelID, ok, err := queryUUID(c, "level_id")
	if err != nil {
		return service.ScopeKey{}, err
	}
	if !ok {
		return service.ScopeKey{}, apperr.New(apperr.KindMissingContext, "level_id is required")
	}

	key := service.ScopeKey{
		SchoolID:       sc.SchoolID,
		AcademicYearID: sc.AcademicYearID,
		MaterialID:     materialID,
		LevelID:        levelID,
	}
	if classID, ok, err := queryUUID(c, "class_id"); err != nil {
		return service.ScopeKey{}, err
	} else if ok {
		key.ClassID = &classID
	}
	return key, nil
}
