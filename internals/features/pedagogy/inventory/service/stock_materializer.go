package service

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scolaris_backend/internals/apperr"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
)

// ApplyMovementEffect computes the new (total, available) pair for one
// movement applied to the current pair. Pure; the ledger append and the
// projection rebuild both go through it, so they cannot drift apart.
func ApplyMovementEffect(total, available int, mt model.MovementType, qty int) (int, int, error) {
	if qty <= 0 {
		return total, available, apperr.New(apperr.KindInvalidStockOperation, "quantity must be positive, got %d", qty)
	}

	switch mt {
	case model.MovementPurchase:
		total += qty
		available += qty

	case model.MovementAssignment:
		if available < qty {
			return total, available, apperr.New(apperr.KindInsufficientStock,
				"insufficient stock: %d available, %d requested", available, qty)
		}
		available -= qty

	case model.MovementReturn:
		available += qty
		// returns can never inflate availability beyond what exists
		if available > total {
			available = total
		}

	case model.MovementReplacement:
		// traceability only, no quantity effect

	case model.MovementDamage, model.MovementDecommission:
		if total-qty < 0 || available-qty < 0 {
			return total, available, apperr.New(apperr.KindInvalidStockOperation,
				"write-off of %d would drive stock negative (total=%d, available=%d)", qty, total, available)
		}
		total -= qty
		available -= qty

	default:
		return total, available, apperr.New(apperr.KindUnknownMovementType, "unknown movement type %q", mt)
	}

	if total < 0 || available < 0 || available > total {
		return total, available, apperr.New(apperr.KindInvalidStockOperation,
			"movement would violate stock invariant (total=%d, available=%d)", total, available)
	}
	return total, available, nil
}

// getOrCreateStockTx returns the stock row for the scope key, locked FOR
// UPDATE for the remainder of tx, creating it at (0,0) on first use. The lock
// serializes concurrent appends against the same scope key across instances.
func getOrCreateStockTx(tx *gorm.DB, key ScopeKey) (*model.StockModel, error) {
	var stock model.StockModel
	err := scopeWhere(lockForUpdate(tx), "stock", key).First(&stock).Error
	if err == nil {
		return &stock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// First movement for this scope. DO NOTHING keeps a lost creation race
	// from erroring out the transaction (postgres aborts the whole tx on a
	// raw unique violation); the locked re-read then serializes both writers
	// behind whichever row landed.
	stock = model.StockModel{
		StockSchoolID:       key.SchoolID,
		StockAcademicYearID: key.AcademicYearID,
		StockMaterialID:     key.MaterialID,
		StockLevelID:        key.LevelID,
		StockClassID:        key.ClassID,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stock).Error; err != nil {
		return nil, err
	}
	stock = model.StockModel{}
	if err := scopeWhere(lockForUpdate(tx), "stock", key).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// lockForUpdate adds the pessimistic row lock. sqlite (tests) has no FOR
// UPDATE; its single-writer model already serializes the read-modify-write.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
