package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"scolaris_backend/internals/apperr"
	yearModel "scolaris_backend/internals/features/academics/academic_years/model"
	structureModel "scolaris_backend/internals/features/academics/structure/model"
	auditModel "scolaris_backend/internals/features/audit/model"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
	"scolaris_backend/internals/features/pedagogy/inventory/service"
	materialModel "scolaris_backend/internals/features/pedagogy/materials/model"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	DB       *gorm.DB
	SchoolID uuid.UUID
	YearID   uuid.UUID
	LevelID  uuid.UUID
	Material *materialModel.MaterialModel
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&yearModel.AcademicYearModel{},
		&structureModel.SchoolLevelModel{},
		&structureModel.ClassRoomModel{},
		&structureModel.TeacherAffiliationModel{},
		&materialModel.MaterialModel{},
		&model.StockModel{},
		&model.MovementModel{},
		&model.AssignmentModel{},
		&auditModel.AuditEntryModel{},
	))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		DB:       db,
		SchoolID: uuid.New(),
	}

	year := yearModel.AcademicYearModel{
		AcademicYearSchoolID: f.SchoolID,
		AcademicYearLabel:    "2025-2026",
		AcademicYearIsActive: true,
	}
	require.NoError(t, db.Create(&year).Error)
	f.YearID = year.AcademicYearID

	level := structureModel.SchoolLevelModel{
		SchoolLevelSchoolID: f.SchoolID,
		SchoolLevelName:     "Primaire",
		SchoolLevelIsActive: true,
	}
	require.NoError(t, db.Create(&level).Error)
	f.LevelID = level.SchoolLevelID

	material := materialModel.MaterialModel{
		MaterialSchoolID: f.SchoolID,
		MaterialCode:     "MAT-001",
		MaterialName:     "Cahier d'exercices CE1",
		MaterialLevelID:  f.LevelID,
		MaterialIsActive: true,
	}
	require.NoError(t, db.Create(&material).Error)
	f.Material = &material

	return f
}

func (f *fixture) key() service.ScopeKey {
	return service.ScopeKey{
		SchoolID:       f.SchoolID,
		AcademicYearID: f.YearID,
		MaterialID:     f.Material.MaterialID,
		LevelID:        f.LevelID,
	}
}

func (f *fixture) stock(t *testing.T, ledger *service.LedgerService) *model.StockModel {
	t.Helper()
	stock, err := ledger.GetStock(f.key())
	require.NoError(t, err)
	return stock
}

func appendMovement(t *testing.T, ledger *service.LedgerService, f *fixture, mt model.MovementType, qty int) *model.StockModel {
	t.Helper()
	_, stock, err := ledger.Append(service.AppendInput{
		Key:         f.key(),
		Type:        mt,
		Quantity:    qty,
		PerformedBy: uuid.New(),
	})
	require.NoError(t, err)
	return stock
}

// =============================================================================
// EFFECT TABLE
// =============================================================================

func TestApplyMovementEffect(t *testing.T) {
	cases := []struct {
		name          string
		total, avail  int
		mt            model.MovementType
		qty           int
		wantTotal     int
		wantAvail     int
		wantKind      apperr.Kind
	}{
		{name: "purchase grows both", total: 0, avail: 0, mt: model.MovementPurchase, qty: 50, wantTotal: 50, wantAvail: 50},
		{name: "assignment consumes available", total: 50, avail: 50, mt: model.MovementAssignment, qty: 10, wantTotal: 50, wantAvail: 40},
		{name: "assignment beyond available fails", total: 50, avail: 40, mt: model.MovementAssignment, qty: 41, wantKind: apperr.KindInsufficientStock},
		{name: "return restores available", total: 50, avail: 40, mt: model.MovementReturn, qty: 5, wantTotal: 50, wantAvail: 45},
		{name: "return clamps at total", total: 50, avail: 48, mt: model.MovementReturn, qty: 10, wantTotal: 50, wantAvail: 50},
		{name: "replacement is a no-op", total: 50, avail: 45, mt: model.MovementReplacement, qty: 3, wantTotal: 50, wantAvail: 45},
		{name: "damage writes off both", total: 50, avail: 45, mt: model.MovementDamage, qty: 45, wantTotal: 5, wantAvail: 0},
		{name: "damage past zero fails", total: 5, avail: 0, mt: model.MovementDamage, qty: 10, wantKind: apperr.KindInvalidStockOperation},
		{name: "decommission equals damage", total: 10, avail: 10, mt: model.MovementDecommission, qty: 4, wantTotal: 6, wantAvail: 6},
		{name: "zero quantity rejected", total: 10, avail: 10, mt: model.MovementPurchase, qty: 0, wantKind: apperr.KindInvalidStockOperation},
		{name: "unknown type rejected", total: 10, avail: 10, mt: model.MovementType("THEFT"), qty: 1, wantKind: apperr.KindUnknownMovementType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, avail, err := service.ApplyMovementEffect(tc.total, tc.avail, tc.mt, tc.qty)
			if tc.wantKind != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, tc.wantKind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, total)
			assert.Equal(t, tc.wantAvail, avail)
		})
	}
}

// =============================================================================
// LEDGER APPEND
// =============================================================================

func TestAppend_PurchaseIntoEmptyScope(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	mv, stock, err := ledger.Append(service.AppendInput{
		Key:         f.key(),
		Type:        model.MovementPurchase,
		Quantity:    50,
		PerformedBy: uuid.New(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, mv.MovementID)
	assert.Equal(t, 50, stock.StockQuantityTotal)
	assert.Equal(t, 50, stock.StockQuantityAvailable)

	// the projection row was created lazily and persisted
	persisted := f.stock(t, ledger)
	assert.Equal(t, 50, persisted.StockQuantityTotal)
	assert.Equal(t, 50, persisted.StockQuantityAvailable)
}

func TestAppend_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	appendMovement(t, ledger, f, model.MovementPurchase, 50)
	appendMovement(t, ledger, f, model.MovementAssignment, 10)

	_, _, err := ledger.Append(service.AppendInput{
		Key:         f.key(),
		Type:        model.MovementAssignment,
		Quantity:    41,
		PerformedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	stock := f.stock(t, ledger)
	assert.Equal(t, 50, stock.StockQuantityTotal)
	assert.Equal(t, 40, stock.StockQuantityAvailable)

	// no movement row leaked from the rejected append
	var cnt int64
	require.NoError(t, f.DB.Model(&model.MovementModel{}).Count(&cnt).Error)
	assert.EqualValues(t, 2, cnt)
}

func TestAppend_WriteOffSequence(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	appendMovement(t, ledger, f, model.MovementPurchase, 50)
	appendMovement(t, ledger, f, model.MovementAssignment, 10)
	stock := appendMovement(t, ledger, f, model.MovementReturn, 5)
	assert.Equal(t, 50, stock.StockQuantityTotal)
	assert.Equal(t, 45, stock.StockQuantityAvailable)

	stock = appendMovement(t, ledger, f, model.MovementDamage, 45)
	assert.Equal(t, 5, stock.StockQuantityTotal)
	assert.Equal(t, 0, stock.StockQuantityAvailable)

	_, _, err := ledger.Append(service.AppendInput{
		Key:         f.key(),
		Type:        model.MovementDamage,
		Quantity:    10,
		PerformedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidStockOperation))

	stock = f.stock(t, ledger)
	assert.Equal(t, 5, stock.StockQuantityTotal)
	assert.Equal(t, 0, stock.StockQuantityAvailable)
}

func TestAppend_UnknownMaterial(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	key := f.key()
	key.MaterialID = uuid.New()

	_, _, err := ledger.Append(service.AppendInput{
		Key:         key,
		Type:        model.MovementPurchase,
		Quantity:    1,
		PerformedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAppend_UnknownMovementType(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	_, _, err := ledger.Append(service.AppendInput{
		Key:         f.key(),
		Type:        model.MovementType("LOAN"),
		Quantity:    1,
		PerformedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnknownMovementType))
}

func seedClass(t *testing.T, f *fixture, levelID uuid.UUID) uuid.UUID {
	t.Helper()
	class := structureModel.ClassRoomModel{
		ClassRoomSchoolID: f.SchoolID,
		ClassRoomLevelID:  levelID,
		ClassRoomName:     "CE1-A",
	}
	require.NoError(t, f.DB.Create(&class).Error)
	return class.ClassRoomID
}

func TestAppend_ClassPoolIsolatedFromLevelPool(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	classID := seedClass(t, f, f.LevelID)
	classKey := f.key()
	classKey.ClassID = &classID

	appendMovement(t, ledger, f, model.MovementPurchase, 30)

	_, classStock, err := ledger.Append(service.AppendInput{
		Key:         classKey,
		Type:        model.MovementPurchase,
		Quantity:    7,
		PerformedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, classStock.StockQuantityTotal)

	levelStock := f.stock(t, ledger)
	assert.Equal(t, 30, levelStock.StockQuantityTotal)
}

func TestAppend_ClassMustBelongToTargetLevel(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	otherLevel := structureModel.SchoolLevelModel{
		SchoolLevelSchoolID: f.SchoolID,
		SchoolLevelName:     "Collège",
		SchoolLevelIsActive: true,
	}
	require.NoError(t, f.DB.Create(&otherLevel).Error)
	foreignClassID := seedClass(t, f, otherLevel.SchoolLevelID)

	key := f.key()
	key.ClassID = &foreignClassID
	_, _, err := ledger.Append(service.AppendInput{
		Key:         key,
		Type:        model.MovementPurchase,
		Quantity:    10,
		PerformedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidContext))

	// an unknown class id is rejected the same way
	unknownClassID := uuid.New()
	key.ClassID = &unknownClassID
	_, _, err = ledger.Append(service.AppendInput{
		Key:         key,
		Type:        model.MovementPurchase,
		Quantity:    10,
		PerformedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidContext))

	// nothing landed
	var cnt int64
	require.NoError(t, f.DB.Model(&model.MovementModel{}).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

func TestAppend_AdoptsProjectionRowCreatedConcurrently(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	// another writer already committed the zero row for this scope
	row := model.StockModel{
		StockSchoolID:       f.SchoolID,
		StockAcademicYearID: f.YearID,
		StockMaterialID:     f.Material.MaterialID,
		StockLevelID:        f.LevelID,
	}
	require.NoError(t, f.DB.Create(&row).Error)

	stock := appendMovement(t, ledger, f, model.MovementPurchase, 10)
	assert.Equal(t, row.StockID, stock.StockID)
	assert.Equal(t, 10, stock.StockQuantityTotal)

	var cnt int64
	require.NoError(t, f.DB.Model(&model.StockModel{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

// A lost projection-row creation race must not raise an error, or the
// surrounding transaction would abort instead of serializing behind the
// winner. Covers both the level pool (NULL class) and a class pool.
func TestStockRow_DuplicateScopeInsertDoesNothing(t *testing.T) {
	f := newFixture(t)
	classID := seedClass(t, f, f.LevelID)

	for _, class := range []*uuid.UUID{nil, &classID} {
		first := model.StockModel{
			StockSchoolID:       f.SchoolID,
			StockAcademicYearID: f.YearID,
			StockMaterialID:     f.Material.MaterialID,
			StockLevelID:        f.LevelID,
			StockClassID:        class,
		}
		require.NoError(t, f.DB.Create(&first).Error)

		dup := model.StockModel{
			StockSchoolID:       f.SchoolID,
			StockAcademicYearID: f.YearID,
			StockMaterialID:     f.Material.MaterialID,
			StockLevelID:        f.LevelID,
			StockClassID:        class,
		}
		require.NoError(t, f.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&dup).Error)
	}

	var cnt int64
	require.NoError(t, f.DB.Model(&model.StockModel{}).Count(&cnt).Error)
	assert.EqualValues(t, 2, cnt)
}

// =============================================================================
// REPLAY / REBUILD
// =============================================================================

func TestRebuild_ReproducesProjectionExactly(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	appendMovement(t, ledger, f, model.MovementPurchase, 50)
	appendMovement(t, ledger, f, model.MovementAssignment, 10)
	appendMovement(t, ledger, f, model.MovementReturn, 5)
	appendMovement(t, ledger, f, model.MovementReplacement, 3)
	appendMovement(t, ledger, f, model.MovementDamage, 20)

	before := f.stock(t, ledger)

	// corrupt the projection on purpose, then replay
	require.NoError(t, f.DB.Model(&model.StockModel{}).
		Where("stock_id = ?", before.StockID).
		Updates(map[string]any{
			"stock_quantity_total":     999,
			"stock_quantity_available": 999,
		}).Error)

	rebuilt, err := ledger.Rebuild(f.key())
	require.NoError(t, err)
	assert.Equal(t, before.StockQuantityTotal, rebuilt.StockQuantityTotal)
	assert.Equal(t, before.StockQuantityAvailable, rebuilt.StockQuantityAvailable)
}

func TestGetStock_ZeroSnapshotForUntouchedScope(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	stock := f.stock(t, ledger)
	assert.Equal(t, 0, stock.StockQuantityTotal)
	assert.Equal(t, 0, stock.StockQuantityAvailable)

	// reads never create rows
	var cnt int64
	require.NoError(t, f.DB.Model(&model.StockModel{}).Count(&cnt).Error)
	assert.EqualValues(t, 0, cnt)
}

// =============================================================================
// LISTING
// =============================================================================

func TestListMovements_FiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ledger := service.NewLedgerService(f.DB)

	appendMovement(t, ledger, f, model.MovementPurchase, 50)
	appendMovement(t, ledger, f, model.MovementAssignment, 5)
	appendMovement(t, ledger, f, model.MovementAssignment, 3)

	all, total, err := ledger.ListMovements(f.SchoolID, f.YearID, service.MovementFilters{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	mt := model.MovementAssignment
	assignments, total, err := ledger.ListMovements(f.SchoolID, f.YearID, service.MovementFilters{Type: &mt}, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, assignments, 1)
}
