package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	auditModel "scolaris_backend/internals/features/audit/model"
	auditService "scolaris_backend/internals/features/audit/service"
	dto "scolaris_backend/internals/features/pedagogy/inventory/dto"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
	service "scolaris_backend/internals/features/pedagogy/inventory/service"
	helper "scolaris_backend/internals/helpers"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

type MovementController struct {
	DB     *gorm.DB
	Ledger *service.LedgerService
	Audit  *auditService.Recorder
}

var validate = validator.New()

// =========================================================
// CREATE - POST /inventory/movements
// Appends one movement to the ledger and applies its stock effect.
// =========================================================
func (h *MovementController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbWrite); err != nil {
		return helper.JsonAppError(c, err)
	}

	var req dto.MovementCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	mt, err := model.ParseMovementType(req.MovementType)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	key, err := req.ToScopeKey(sc)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	var reference *uuid.UUID
	if req.Reference != nil && strings.TrimSpace(*req.Reference) != "" {
		ref, err := uuid.Parse(strings.TrimSpace(*req.Reference))
		if err != nil {
			return helper.JsonAppError(c, apperr.New(apperr.KindInvalidContext, "reference is not a valid uuid"))
		}
		reference = &ref
	}

	mv, stock, err := h.Ledger.Append(service.AppendInput{
		Key:         key,
		Type:        mt,
		Quantity:    req.Quantity,
		PerformedBy: sc.ActorID,
		Reference:   reference,
		Notes:       req.Notes,
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	h.Audit.Record(sc, auditModel.ActionCreate, "material_movement", mv.MovementID, map[string]any{
		"movement_type": string(mv.MovementType),
		"quantity":      mv.MovementQuantity,
		"material_id":   key.MaterialID.String(),
	})

	return helper.JsonCreated(c, "Movement recorded", fiber.Map{
		"movement": dto.ToMovementResponse(mv),
		"stock":    dto.ToStockResponse(stock),
	})
}

// =========================================================
// LIST - GET /inventory/movements
// Filters: material_id, level_id, class_id, movement_type. Paginated.
// =========================================================
func (h *MovementController) List(c *fiber.Ctx) error {
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

	var filters service.MovementFilters
	if id, ok, err := queryUUID(c, "material_id"); err != nil {
		return helper.JsonAppError(c, err)
	} else if ok {
		filters.MaterialID = &id
	}
	if id, ok, err := queryUUID(c, "level_id"); err != nil {
		return helper.JsonAppError(c, err)
	} else if ok {
		filters.LevelID = &id
	}
	if id, ok, err := queryUUID(c, "class_id"); err != nil {
		return helper.JsonAppError(c, err)
	} else if ok {
		filters.ClassID = &id
	}
	if raw := strings.TrimSpace(c.Query("movement_type")); raw != "" {
		mt, err := model.ParseMovementType(strings.ToUpper(raw))
		if err != nil {
			return helper.JsonAppError(c, err)
		}
		filters.Type = &mt
	}

	paging := helper.ResolvePaging(c, 20, 100)
	items, total, err := h.Ledger.ListMovements(sc.SchoolID, sc.AcademicYearID, filters, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Movements fetched",
		dto.ToMovementResponses(items),
		helper.BuildPagination(paging, total, len(items)))
}

func queryUUID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, apperr.New(apperr.KindInvalidContext, "%s is not a valid uuid", name)
	}
	return id, true, nil
}
