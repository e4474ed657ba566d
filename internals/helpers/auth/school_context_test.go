package helperAuth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"scolaris_backend/internals/apperr"
	"scolaris_backend/internals/constants"
	yearModel "scolaris_backend/internals/features/academics/academic_years/model"
	helperAuth "scolaris_backend/internals/helpers/auth"
)

func newAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&yearModel.AcademicYearModel{}))
	return db
}

func seedYear(t *testing.T, db *gorm.DB, schoolID uuid.UUID, active bool) uuid.UUID {
	t.Helper()
	year := yearModel.AcademicYearModel{
		AcademicYearSchoolID: schoolID,
		AcademicYearLabel:    "2025-2026",
		AcademicYearIsActive: active,
	}
	require.NoError(t, db.Create(&year).Error)
	return year.AcademicYearID
}

// resolve runs ResolveSchoolContext inside a real fiber handler so locals and
// headers behave exactly as in production.
func resolve(t *testing.T, db *gorm.DB, write bool, locals map[string]string, req *http.Request) (*helperAuth.SchoolContext, error) {
	t.Helper()
	app := fiber.New()

	var (
		sc    *helperAuth.SchoolContext
		scErr error
	)
	app.Get("/probe", func(c *fiber.Ctx) error {
		for k, v := range locals {
			c.Locals(k, v)
		}
		sc, scErr = helperAuth.ResolveSchoolContext(c, db, write)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return sc, scErr
}

func sessionLocals(schoolID, actorID uuid.UUID, role string) map[string]string {
	return map[string]string{
		helperAuth.LocSchoolID: schoolID.String(),
		helperAuth.LocUserID:   actorID.String(),
		helperAuth.LocUserRole: role,
	}
}

func TestResolveSchoolContext_MissingSchoolWinsOverEverything(t *testing.T) {
	db := newAuthDB(t)

	// no locals, no headers at all: the tenant check fires first
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	_, err := resolve(t, db, false, nil, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindMissingContext))
}

func TestResolveSchoolContext_MalformedSchoolID(t *testing.T) {
	db := newAuthDB(t)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-School-ID", "not-a-uuid")
	_, err := resolve(t, db, false, nil, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidContext))
}

func TestResolveSchoolContext_WriteRequiresYear(t *testing.T) {
	db := newAuthDB(t)
	locals := sessionLocals(uuid.New(), uuid.New(), constants.RoleDirector)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	_, err := resolve(t, db, true, locals, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindMissingContext))

	// the same request resolves fine as a read
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	sc, err := resolve(t, db, false, locals, req)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, sc.AcademicYearID)
}

func TestResolveSchoolContext_MissingActor(t *testing.T) {
	db := newAuthDB(t)
	locals := map[string]string{helperAuth.LocSchoolID: uuid.New().String()}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	_, err := resolve(t, db, false, locals, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestResolveSchoolContext_MissingRole(t *testing.T) {
	db := newAuthDB(t)
	locals := map[string]string{
		helperAuth.LocSchoolID: uuid.New().String(),
		helperAuth.LocUserID:   uuid.New().String(),
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	_, err := resolve(t, db, false, locals, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestResolveSchoolContext_HeaderFallbacks(t *testing.T) {
	db := newAuthDB(t)
	schoolID := uuid.New()
	yearID := seedYear(t, db, schoolID, true)
	locals := map[string]string{
		helperAuth.LocUserID:   uuid.New().String(),
		helperAuth.LocUserRole: constants.RoleDirector,
	}

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-School-ID", schoolID.String())
	req.Header.Set("X-Academic-Year-ID", yearID.String())

	sc, err := resolve(t, db, true, locals, req)
	require.NoError(t, err)
	assert.Equal(t, schoolID, sc.SchoolID)
	assert.Equal(t, yearID, sc.AcademicYearID)
	assert.Equal(t, constants.RoleDirector, sc.ActorRole)
}

func TestResolveSchoolContext_YearMustBelongToTenant(t *testing.T) {
	db := newAuthDB(t)
	schoolID := uuid.New()
	otherSchoolYear := seedYear(t, db, uuid.New(), true)
	locals := sessionLocals(schoolID, uuid.New(), constants.RoleDirector)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Academic-Year-ID", otherSchoolYear.String())

	_, err := resolve(t, db, true, locals, req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidContext))
}

func TestResolveSchoolContext_InactiveYear(t *testing.T) {
	db := newAuthDB(t)
	schoolID := uuid.New()
	yearID := seedYear(t, db, schoolID, false)

	// a director may not write into a closed year
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Academic-Year-ID", yearID.String())
	_, err := resolve(t, db, true, sessionLocals(schoolID, uuid.New(), constants.RoleDirector), req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	// the top administrative role may (backdated corrections)
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Academic-Year-ID", yearID.String())
	sc, err := resolve(t, db, true, sessionLocals(schoolID, uuid.New(), constants.RoleAdmin), req)
	require.NoError(t, err)
	assert.Equal(t, yearID, sc.AcademicYearID)
}

func TestResolveSchoolContext_RoleIsLowercased(t *testing.T) {
	db := newAuthDB(t)
	locals := sessionLocals(uuid.New(), uuid.New(), "Director")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	sc, err := resolve(t, db, false, locals, req)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleDirector, sc.ActorRole)
}

// =============================================================================
// ROLE / VERB TABLE
// =============================================================================

func TestEnsureAllowed(t *testing.T) {
	cases := []struct {
		role    string
		verb    helperAuth.Verb
		allowed bool
	}{
		{constants.RoleAdmin, helperAuth.VerbDelete, true},
		{constants.RolePromoter, helperAuth.VerbDelete, true},
		{constants.RoleDirector, helperAuth.VerbWrite, true},
		{constants.RoleDirector, helperAuth.VerbDelete, false},
		{constants.RoleAccountant, helperAuth.VerbRead, true},
		{constants.RoleAccountant, helperAuth.VerbWrite, false},
		{constants.RoleSecretary, helperAuth.VerbWrite, false},
		{constants.RoleTeacher, helperAuth.VerbRead, true},
		{constants.RoleTeacher, helperAuth.VerbWrite, false},
		{"janitor", helperAuth.VerbRead, false},
	}

	for _, tc := range cases {
		sc := &helperAuth.SchoolContext{ActorRole: tc.role}
		err := helperAuth.EnsureAllowed(sc, tc.verb)
		if tc.allowed {
			assert.NoError(t, err, "%s should %s", tc.role, tc.verb)
		} else {
			assert.True(t, apperr.IsKind(err, apperr.KindForbidden), "%s should not %s", tc.role, tc.verb)
		}
	}
}

func TestEnsureTeacherReadScope(t *testing.T) {
	teacherID := uuid.New()

	// non-teachers see the whole tenant
	director := &helperAuth.SchoolContext{ActorID: uuid.New(), ActorRole: constants.RoleDirector}
	assert.NoError(t, helperAuth.EnsureTeacherReadScope(director, uuid.New()))
	assert.NoError(t, helperAuth.EnsureTeacherReadScope(director, uuid.Nil))

	teacher := &helperAuth.SchoolContext{ActorID: teacherID, ActorRole: constants.RoleTeacher}
	assert.NoError(t, helperAuth.EnsureTeacherReadScope(teacher, teacherID))

	err := helperAuth.EnsureTeacherReadScope(teacher, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	err = helperAuth.EnsureTeacherReadScope(teacher, uuid.Nil)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}
