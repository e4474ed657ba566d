package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	structureModel "scolaris_backend/internals/features/academics/structure/model"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
	"scolaris_backend/internals/features/pedagogy/inventory/service"
)

func seedTeacher(t *testing.T, f *fixture) uuid.UUID {
	t.Helper()
	teacherID := uuid.New()
	aff := structureModel.TeacherAffiliationModel{
		TeacherAffiliationSchoolID:       f.SchoolID,
		TeacherAffiliationTeacherID:      teacherID,
		TeacherAffiliationLevelID:        f.LevelID,
		TeacherAffiliationAcademicYearID: f.YearID,
		TeacherAffiliationIsActive:       true,
	}
	require.NoError(t, f.DB.Create(&aff).Error)
	return teacherID
}

func newAssignmentService(f *fixture) *service.AssignmentService {
	ledger := service.NewLedgerService(f.DB)
	return service.NewAssignmentService(f.DB, ledger)
}

func countAssignments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, db.Model(&model.AssignmentModel{}).Count(&cnt).Error)
	return cnt
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreateAssignment_Success(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 50)

	assignment, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        teacherID,
		Quantity:         10,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.NoError(t, err)

	assert.False(t, assignment.AssignmentIsSigned)
	require.NotNil(t, assignment.AssignmentMovementID)

	// the movement references the assignment back
	var mv model.MovementModel
	require.NoError(t, f.DB.First(&mv, "movement_id = ?", *assignment.AssignmentMovementID).Error)
	require.NotNil(t, mv.MovementReference)
	assert.Equal(t, assignment.AssignmentID, *mv.MovementReference)
	assert.Equal(t, model.MovementAssignment, mv.MovementType)

	stock := f.stock(t, svc.Ledger)
	assert.Equal(t, 50, stock.StockQuantityTotal)
	assert.Equal(t, 40, stock.StockQuantityAvailable)
}

func TestCreateAssignment_NoStockRow(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	_, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        teacherID,
		Quantity:         1,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNoStockForContext))
	assert.EqualValues(t, 0, countAssignments(t, f.DB))
}

func TestCreateAssignment_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 5)

	_, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        teacherID,
		Quantity:         6,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
	assert.EqualValues(t, 0, countAssignments(t, f.DB))
}

func TestCreateAssignment_InactiveMaterial(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	require.NoError(t, f.DB.Model(f.Material).Update("material_is_active", false).Error)

	_, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        teacherID,
		Quantity:         1,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateAssignment_UnaffiliatedTeacher(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 10)

	_, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        uuid.New(), // no affiliation seeded
		Quantity:         1,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidAssignment))
}

func TestCreateAssignment_ClassOutsideLevel(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 10)

	otherLevel := structureModel.SchoolLevelModel{
		SchoolLevelSchoolID: f.SchoolID,
		SchoolLevelName:     "Collège",
		SchoolLevelIsActive: true,
	}
	require.NoError(t, f.DB.Create(&otherLevel).Error)
	foreignClassID := seedClass(t, f, otherLevel.SchoolLevelID)

	key := f.key()
	key.ClassID = &foreignClassID
	_, err := svc.Create(service.CreateAssignmentInput{
		Key:              key,
		TeacherID:        teacherID,
		Quantity:         1,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidContext))
	assert.EqualValues(t, 0, countAssignments(t, f.DB))
}

func TestCreateAssignment_LevelMismatch(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	key := f.key()
	key.LevelID = uuid.New() // material belongs to f.LevelID

	_, err := svc.Create(service.CreateAssignmentInput{
		Key:              key,
		TeacherID:        teacherID,
		Quantity:         1,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidAssignment))
}

// The advisory guard can pass and the ledger still reject at commit time
// (stale read under contention). The assignment row must not survive the
// rolled-back transaction.
func TestCreateAssignment_RollbackWhenMovementRejected(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)
	teacherID := seedTeacher(t, f)

	appendMovement(t, ledger, f, model.MovementPurchase, 5)

	err := f.DB.Transaction(func(tx *gorm.DB) error {
		assignment := model.AssignmentModel{
			AssignmentSchoolID:         f.SchoolID,
			AssignmentAcademicYearID:   f.YearID,
			AssignmentMaterialID:       f.Material.MaterialID,
			AssignmentLevelID:          f.LevelID,
			AssignmentTeacherID:        teacherID,
			AssignmentQuantity:         6,
			AssignmentConditionAtIssue: "new",
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		ref := assignment.AssignmentID
		_, _, err := ledger.AppendTx(tx, service.AppendInput{
			Key:         f.key(),
			Type:        model.MovementAssignment,
			Quantity:    6,
			PerformedBy: uuid.New(),
			Reference:   &ref,
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	assert.EqualValues(t, 0, countAssignments(t, f.DB))
	stock := f.stock(t, ledger)
	assert.Equal(t, 5, stock.StockQuantityAvailable)
}

// =============================================================================
// SIGN
// =============================================================================

func TestSign_OneWayTransition(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 10)

	assignment, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        teacherID,
		Quantity:         2,
		ConditionAtIssue: "good",
		PerformedBy:      uuid.New(),
	})
	require.NoError(t, err)

	signed, err := svc.Sign(f.SchoolID, assignment.AssignmentID, teacherID)
	require.NoError(t, err)
	assert.True(t, signed.AssignmentIsSigned)
	require.NotNil(t, signed.AssignmentSignedAt)
	firstSignedAt := *signed.AssignmentSignedAt

	// second sign fails and leaves signed_at untouched
	_, err = svc.Sign(f.SchoolID, assignment.AssignmentID, teacherID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAlreadySigned))

	reloaded, err := svc.GetByID(f.SchoolID, assignment.AssignmentID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.AssignmentSignedAt)
	assert.True(t, reloaded.AssignmentSignedAt.Equal(firstSignedAt))
}

func TestSign_OnlyReceivingTeacher(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherID := seedTeacher(t, f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 10)

	assignment, err := svc.Create(service.CreateAssignmentInput{
		Key:              f.key(),
		TeacherID:        teacherID,
		Quantity:         1,
		ConditionAtIssue: "new",
		PerformedBy:      uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Sign(f.SchoolID, assignment.AssignmentID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSign_UnknownAssignment(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)

	_, err := svc.Sign(f.SchoolID, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

// =============================================================================
// LIST
// =============================================================================

func TestListAssignments_TeacherFilter(t *testing.T) {
	f := newFixture(t)
	svc := newAssignmentService(f)
	teacherA := seedTeacher(t, f)
	teacherB := seedTeacher(t, f)

	appendMovement(t, svc.Ledger, f, model.MovementPurchase, 20)

	for _, id := range []uuid.UUID{teacherA, teacherA, teacherB} {
		_, err := svc.Create(service.CreateAssignmentInput{
			Key:              f.key(),
			TeacherID:        id,
			Quantity:         1,
			ConditionAtIssue: "new",
			PerformedBy:      uuid.New(),
		})
		require.NoError(t, err)
	}

	items, total, err := svc.List(f.SchoolID, f.YearID, service.AssignmentFilters{TeacherID: &teacherA}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}
