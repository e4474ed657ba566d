package controller

import (
	"strings"

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

type AssignmentController struct {
	DB          *gorm.DB
	Assignments *service.AssignmentService
	Audit       *auditService.Recorder
}

// =========================================================
// CREATE - POST /inventory/assignments
// Material handed to a teacher; assignment + ASSIGNMENT movement commit
// together or not at all.
// =========================================================
func (h *AssignmentController) Create(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbWrite); err != nil {
		return helper.JsonAppError(c, err)
	}

	var req dto.AssignmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	req.Normalize()
	if err := validate.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	key, err := req.ToScopeKey(sc)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	teacherID, err := uuid.Parse(strings.TrimSpace(req.TeacherID))
	if err != nil {
		return helper.JsonAppError(c, apperr.New(apperr.KindInvalidContext, "teacher_id is not a valid uuid"))
	}

	assignment, err := h.Assignments.Create(service.CreateAssignmentInput{
		Key:              key,
		TeacherID:        teacherID,
		Quantity:         req.Quantity,
		ConditionAtIssue: req.ConditionAtIssue,
		Notes:            req.Notes,
		PerformedBy:      sc.ActorID,
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	h.Audit.Record(sc, auditModel.ActionCreate, "material_assignment", assignment.AssignmentID, map[string]any{
		"teacher_id":  teacherID.String(),
		"material_id": key.MaterialID.String(),
		"quantity":    req.Quantity,
	})

	return helper.JsonCreated(c, "Assignment created", dto.ToAssignmentResponse(assignment))
}

// =========================================================
// SIGN - POST /inventory/assignments/:id/sign
// Countersignature by the receiving teacher. One-way.
// =========================================================
func (h *AssignmentController) Sign(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, true)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	assignment, err := h.Assignments.Sign(sc.SchoolID, id, sc.ActorID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	h.Audit.Record(sc, auditModel.ActionUpdate, "material_assignment", assignment.AssignmentID, map[string]any{
		"operation": "sign",
	})

	return helper.JsonUpdated(c, "Assignment signed", dto.ToAssignmentResponse(assignment))
}

// =========================================================
// GET BY ID - GET /inventory/assignments/:id
// Teachers may only see their own assignments.
// =========================================================
func (h *AssignmentController) GetByID(c *fiber.Ctx) error {
	sc, err := helperAuth.ResolveSchoolContext(c, h.DB, false)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureAllowed(sc, helperAuth.VerbRead); err != nil {
		return helper.JsonAppError(c, err)
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid assignment id")
	}

	assignment, err := h.Assignments.GetByID(sc.SchoolID, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := helperAuth.EnsureTeacherReadScope(sc, assignment.AssignmentTeacherID); err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonOK(c, "Assignment fetched", dto.ToAssignmentResponse(assignment))
}

// =========================================================
// LIST - GET /inventory/assignments
// Filters: teacher_id, material_id, signed. Teachers are pinned to their own.
// =========================================================
func (h *AssignmentController) List(c *fiber.Ctx) error {
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

	var filters service.AssignmentFilters
	if id, ok, err := queryUUID(c, "teacher_id"); err != nil {
		return helper.JsonAppError(c, err)
	} else if ok {
		filters.TeacherID = &id
	}
	if id, ok, err := queryUUID(c, "material_id"); err != nil {
		return helper.JsonAppError(c, err)
	} else if ok {
		filters.MaterialID = &id
	}
	if raw := strings.TrimSpace(c.Query("signed")); raw != "" {
		signed := raw == "true" || raw == "1"
		filters.Signed = &signed
	}

	if sc.ActorRole == constants.RoleTeacher {
		if filters.TeacherID != nil {
			if err := helperAuth.EnsureTeacherReadScope(sc, *filters.TeacherID); err != nil {
				return helper.JsonAppError(c, err)
			}
		}
		filters.TeacherID = &sc.ActorID
	}

	paging := helper.ResolvePaging(c, 20, 100)
	items, total, err := h.Assignments.List(sc.SchoolID, sc.AcademicYearID, filters, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	return helper.JsonList(c, "Assignments fetched",
		dto.ToAssignmentResponses(items),
		helper.BuildPagination(paging, total, len(items)))
}
