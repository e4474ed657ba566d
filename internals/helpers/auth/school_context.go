package helperAuth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	"scolaris_backend/internals/constants"
	yearModel "scolaris_backend/internals/features/academics/academic_years/model"
)

// Locals keys hydrated by the JWT middleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "user_role"
	LocSchoolID = "school_id"
)

// SchoolContext is the validated request scope. It is resolved once per request
// and handed down the guard chain; no downstream component re-derives it.
type SchoolContext struct {
	SchoolID       uuid.UUID
	AcademicYearID uuid.UUID // uuid.Nil when the request carries no year (reads)
	ActorID        uuid.UUID
	ActorRole      string
}

// ResolveSchoolContext validates the mandatory scope of a request. Rules run in
// a fixed order and the first failure wins:
//  1. tenant (school) id present
//  2. academic year id present for writes
//  3. actor id present
//  4. actor role present
//  5. for writes: the academic year exists in this tenant and is active,
//     unless the actor holds the top administrative role
func ResolveSchoolContext(c *fiber.Ctx, db *gorm.DB, write bool) (*SchoolContext, error) {
	schoolRaw := localString(c, LocSchoolID)
	if schoolRaw == "" {
		schoolRaw = strings.TrimSpace(c.Get("X-School-ID"))
	}
	if schoolRaw == "" {
		schoolRaw = strings.TrimSpace(c.Query("school_id"))
	}
	if schoolRaw == "" {
		return nil, apperr.New(apperr.KindMissingContext, "school id is required")
	}
	schoolID, err := uuid.Parse(schoolRaw)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidContext, "school id is not a valid uuid")
	}

	yearRaw := strings.TrimSpace(c.Get("X-Academic-Year-ID"))
	if yearRaw == "" {
		yearRaw = strings.TrimSpace(c.Query("academic_year_id"))
	}
	if write && yearRaw == "" {
		return nil, apperr.New(apperr.KindMissingContext, "academic year id is required for write operations")
	}
	yearID := uuid.Nil
	if yearRaw != "" {
		yearID, err = uuid.Parse(yearRaw)
		if err != nil {
			return nil, apperr.New(apperr.KindInvalidContext, "academic year id is not a valid uuid")
		}
	}

	actorRaw := localString(c, LocUserID)
	if actorRaw == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "actor id missing from session")
	}
	actorID, err := uuid.Parse(actorRaw)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "actor id is not a valid uuid")
	}

	role := strings.ToLower(localString(c, LocUserRole))
	if role == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "actor role missing from session")
	}

	if write && yearID != uuid.Nil {
		var year yearModel.AcademicYearModel
		err := db.
			Where("academic_year_id = ? AND academic_year_school_id = ?", yearID, schoolID).
			First(&year).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(apperr.KindInvalidContext, "academic year not found")
			}
			return nil, err
		}
		if !year.AcademicYearIsActive && role != constants.RoleAdmin {
			return nil, apperr.New(apperr.KindForbidden, "cannot write to an inactive academic year")
		}
	}

	return &SchoolContext{
		SchoolID:       schoolID,
		AcademicYearID: yearID,
		ActorID:        actorID,
		ActorRole:      role,
	}, nil
}

func localString(c *fiber.Ctx, key string) string {
	if v := c.Locals(key); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
