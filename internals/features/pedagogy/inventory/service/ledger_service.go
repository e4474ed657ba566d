package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	structureModel "scolaris_backend/internals/features/academics/structure/model"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
	materialModel "scolaris_backend/internals/features/pedagogy/materials/model"
)

// LedgerService owns the append-only movement log and the stock projection.
// Every quantity change in the system funnels through Append; nothing else
// writes material_stocks.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

type AppendInput struct {
	Key         ScopeKey
	Type        model.MovementType
	Quantity    int
	PerformedBy uuid.UUID
	Reference   *uuid.UUID
	Notes       *string
}

// Append records one movement and applies its effect to the stock row in a
// single transaction: either both rows land or neither does.
func (s *LedgerService) Append(in AppendInput) (*model.MovementModel, *model.StockModel, error) {
	var (
		mv *model.MovementModel
		st *model.StockModel
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		mv, st, err = s.AppendTx(tx, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return mv, st, nil
}

// AppendTx is Append running inside a caller-owned transaction; the
// assignment workflow uses it so the assignment row and its movement commit
// together. The availability check here, under the row lock, is the
// authoritative one; any earlier pre-flight check is advisory only.
func (s *LedgerService) AppendTx(tx *gorm.DB, in AppendInput) (*model.MovementModel, *model.StockModel, error) {
	if in.Quantity <= 0 {
		return nil, nil, apperr.New(apperr.KindInvalidStockOperation, "quantity must be positive, got %d", in.Quantity)
	}
	if _, err := model.ParseMovementType(string(in.Type)); err != nil {
		return nil, nil, err
	}

	var cnt int64
	if err := tx.Model(&materialModel.MaterialModel{}).
		Where("material_id = ? AND material_school_id = ?", in.Key.MaterialID, in.Key.SchoolID).
		Count(&cnt).Error; err != nil {
		return nil, nil, err
	}
	if cnt == 0 {
		return nil, nil, apperr.New(apperr.KindNotFound, "material not found")
	}

	// a class-scoped key must reference a class of the target level
	if in.Key.ClassID != nil {
		ok, err := structureModel.ClassBelongsToLevel(tx, in.Key.SchoolID, *in.Key.ClassID, in.Key.LevelID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, apperr.New(apperr.KindInvalidContext, "class does not belong to the target school level")
		}
	}

	stock, err := getOrCreateStockTx(tx, in.Key)
	if err != nil {
		return nil, nil, err
	}

	newTotal, newAvailable, err := ApplyMovementEffect(
		stock.StockQuantityTotal, stock.StockQuantityAvailable, in.Type, in.Quantity)
	if err != nil {
		return nil, nil, err
	}

	mv := model.MovementModel{
		MovementSchoolID:       in.Key.SchoolID,
		MovementAcademicYearID: in.Key.AcademicYearID,
		MovementMaterialID:     in.Key.MaterialID,
		MovementLevelID:        in.Key.LevelID,
		MovementClassID:        in.Key.ClassID,
		MovementType:           in.Type,
		MovementQuantity:       in.Quantity,
		MovementPerformedBy:    in.PerformedBy,
		MovementReference:      in.Reference,
		MovementNotes:          in.Notes,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return nil, nil, err
	}

	if err := tx.Model(&model.StockModel{}).
		Where("stock_id = ?", stock.StockID).
		Updates(map[string]any{
			"stock_quantity_total":     newTotal,
			"stock_quantity_available": newAvailable,
		}).Error; err != nil {
		return nil, nil, err
	}
	stock.StockQuantityTotal = newTotal
	stock.StockQuantityAvailable = newAvailable

	return &mv, stock, nil
}

// GetStock returns the current snapshot for a scope key. A scope that never
// saw a movement reads as a zero snapshot; rows are created lazily on first
// append, never on reads.
func (s *LedgerService) GetStock(key ScopeKey) (*model.StockModel, error) {
	var stock model.StockModel
	err := scopeWhere(s.DB, "stock", key).First(&stock).Error
	if err == nil {
		return &stock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &model.StockModel{
		StockSchoolID:       key.SchoolID,
		StockAcademicYearID: key.AcademicYearID,
		StockMaterialID:     key.MaterialID,
		StockLevelID:        key.LevelID,
		StockClassID:        key.ClassID,
	}, nil
}

// Rebuild recomputes the projection for a scope key by replaying its
// movements in commit order from a zero baseline. Operational tool: the
// result must equal what incremental application produced.
func (s *LedgerService) Rebuild(key ScopeKey) (*model.StockModel, error) {
	var stock *model.StockModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		stock, err = getOrCreateStockTx(tx, key)
		if err != nil {
			return err
		}

		var movements []model.MovementModel
		if err := scopeWhere(tx, "movement", key).
			Order("movement_created_at ASC, movement_id ASC").
			Find(&movements).Error; err != nil {
			return err
		}

		total, available := 0, 0
		for _, mv := range movements {
			total, available, err = ApplyMovementEffect(total, available, mv.MovementType, mv.MovementQuantity)
			if err != nil {
				// committed history must replay cleanly; anything else is corruption
				return apperr.New(apperr.KindInvalidStockOperation,
					"ledger replay failed at movement %s: %v", mv.MovementID, err)
			}
		}

		if err := tx.Model(&model.StockModel{}).
			Where("stock_id = ?", stock.StockID).
			Updates(map[string]any{
				"stock_quantity_total":     total,
				"stock_quantity_available": available,
			}).Error; err != nil {
			return err
		}
		stock.StockQuantityTotal = total
		stock.StockQuantityAvailable = available
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stock, nil
}

// ListStocks pages the projection rows of one tenant + year, optionally
// narrowed to a level.
func (s *LedgerService) ListStocks(schoolID, yearID uuid.UUID, levelID *uuid.UUID, offset, limit int) ([]model.StockModel, int64, error) {
	q := s.DB.Model(&model.StockModel{}).
		Where("stock_school_id = ? AND stock_academic_year_id = ?", schoolID, yearID)
	if levelID != nil {
		q = q.Where("stock_level_id = ?", *levelID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.StockModel
	if err := q.
		Order("stock_updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type MovementFilters struct {
	MaterialID *uuid.UUID
	LevelID    *uuid.UUID
	ClassID    *uuid.UUID
	Type       *model.MovementType
}

// ListMovements pages through the ledger for one tenant + academic year,
// newest first.
func (s *LedgerService) ListMovements(schoolID, yearID uuid.UUID, f MovementFilters, offset, limit int) ([]model.MovementModel, int64, error) {
	q := s.DB.Model(&model.MovementModel{}).
		Where("movement_school_id = ? AND movement_academic_year_id = ?", schoolID, yearID)

	if f.MaterialID != nil {
		q = q.Where("movement_material_id = ?", *f.MaterialID)
	}
	if f.LevelID != nil {
		q = q.Where("movement_level_id = ?", *f.LevelID)
	}
	if f.ClassID != nil {
		q = q.Where("movement_class_id = ?", *f.ClassID)
	}
	if f.Type != nil {
		q = q.Where("movement_type = ?", *f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.MovementModel
	if err := q.
		Order("movement_created_at DESC, movement_id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
