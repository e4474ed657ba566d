package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"scolaris_backend/internals/apperr"
	structureModel "scolaris_backend/internals/features/academics/structure/model"
	model "scolaris_backend/internals/features/pedagogy/inventory/model"
	materialModel "scolaris_backend/internals/features/pedagogy/materials/model"
)

// AssignmentService hands material to teachers. The assignment row and its
// ASSIGNMENT movement commit in one transaction; if the ledger rejects the
// movement no assignment survives.
type AssignmentService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewAssignmentService(db *gorm.DB, ledger *LedgerService) *AssignmentService {
	return &AssignmentService{DB: db, Ledger: ledger}
}

// CheckAvailability is the advisory pre-flight: fail fast with a clear
// message before building the assignment. It takes no lock and may be stale
// by commit time; the authoritative check lives in the ledger append.
func (s *AssignmentService) CheckAvailability(key ScopeKey, quantity int) error {
	var stock model.StockModel
	err := scopeWhere(s.DB, "stock", key).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNoStockForContext, "no stock recorded for this material in this context")
		}
		return err
	}
	if stock.StockQuantityAvailable < quantity {
		return apperr.New(apperr.KindInsufficientStock,
			"insufficient stock: %d available, %d requested", stock.StockQuantityAvailable, quantity)
	}
	return nil
}

type CreateAssignmentInput struct {
	Key              ScopeKey
	TeacherID        uuid.UUID
	Quantity         int
	ConditionAtIssue string
	Notes            *string
	PerformedBy      uuid.UUID
}

func (s *AssignmentService) Create(in CreateAssignmentInput) (*model.AssignmentModel, error) {
	// 1) material must be active and belong to the target level
	var material materialModel.MaterialModel
	err := s.DB.
		Where("material_id = ? AND material_school_id = ?", in.Key.MaterialID, in.Key.SchoolID).
		First(&material).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "material not found")
		}
		return nil, err
	}
	if !material.MaterialIsActive {
		return nil, apperr.New(apperr.KindNotFound, "material is no longer active")
	}
	if material.MaterialLevelID != in.Key.LevelID {
		return nil, apperr.New(apperr.KindInvalidAssignment, "material does not belong to the target school level")
	}
	if in.Key.ClassID != nil {
		ok, err := structureModel.ClassBelongsToLevel(s.DB, in.Key.SchoolID, *in.Key.ClassID, in.Key.LevelID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.KindInvalidContext, "class does not belong to the target school level")
		}
	}

	// 2) teacher must be actively affiliated with the level this year
	ok, err := structureModel.HasActiveTeacherAffiliation(
		s.DB, in.Key.SchoolID, in.TeacherID, in.Key.LevelID, in.Key.AcademicYearID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindInvalidAssignment, "teacher is not actively affiliated with the target school level")
	}

	// 3) advisory availability guard
	if err := s.CheckAvailability(in.Key, in.Quantity); err != nil {
		return nil, err
	}

	// 4+5) assignment row + ledger movement, atomically
	var assignment model.AssignmentModel
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		assignment = model.AssignmentModel{
			AssignmentSchoolID:         in.Key.SchoolID,
			AssignmentAcademicYearID:   in.Key.AcademicYearID,
			AssignmentMaterialID:       in.Key.MaterialID,
			AssignmentLevelID:          in.Key.LevelID,
			AssignmentClassID:          in.Key.ClassID,
			AssignmentTeacherID:        in.TeacherID,
			AssignmentQuantity:         in.Quantity,
			AssignmentConditionAtIssue: in.ConditionAtIssue,
			AssignmentNotes:            in.Notes,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		ref := assignment.AssignmentID
		mv, _, err := s.Ledger.AppendTx(tx, AppendInput{
			Key:         in.Key,
			Type:        model.MovementAssignment,
			Quantity:    in.Quantity,
			PerformedBy: in.PerformedBy,
			Reference:   &ref,
			Notes:       in.Notes,
		})
		if err != nil {
			return err
		}

		return tx.Model(&model.AssignmentModel{}).
			Where("assignment_id = ?", assignment.AssignmentID).
			Update("assignment_movement_id", mv.MovementID).Error
	})
	if err != nil {
		return nil, err
	}

	// reload for the movement linkage set inside the transaction
	if err := s.DB.First(&assignment, "assignment_id = ?", assignment.AssignmentID).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Sign marks the assignment countersigned by the receiving teacher. Terminal
// and one-way: there is no unsign.
func (s *AssignmentService) Sign(schoolID, assignmentID, signedBy uuid.UUID) (*model.AssignmentModel, error) {
	var assignment model.AssignmentModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("assignment_id = ? AND assignment_school_id = ?", assignmentID, schoolID).
			First(&assignment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "assignment not found")
			}
			return err
		}
		if assignment.AssignmentIsSigned {
			return apperr.New(apperr.KindAlreadySigned, "assignment is already signed")
		}
		if assignment.AssignmentTeacherID != signedBy {
			return apperr.New(apperr.KindForbidden, "only the receiving teacher may countersign")
		}

		now := time.Now()
		if err := tx.Model(&model.AssignmentModel{}).
			Where("assignment_id = ?", assignment.AssignmentID).
			Updates(map[string]any{
				"assignment_is_signed": true,
				"assignment_signed_at": now,
				"assignment_signed_by": signedBy,
			}).Error; err != nil {
			return err
		}
		assignment.AssignmentIsSigned = true
		assignment.AssignmentSignedAt = &now
		assignment.AssignmentSignedBy = &signedBy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GetByID loads one assignment within the tenant.
func (s *AssignmentService) GetByID(schoolID, assignmentID uuid.UUID) (*model.AssignmentModel, error) {
	var assignment model.AssignmentModel
	err := s.DB.
		Where("assignment_id = ? AND assignment_school_id = ?", assignmentID, schoolID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "assignment not found")
		}
		return nil, err
	}
	return &assignment, nil
}

type AssignmentFilters struct {
	TeacherID  *uuid.UUID
	MaterialID *uuid.UUID
	Signed     *bool
}

func (s *AssignmentService) List(schoolID, yearID uuid.UUID, f AssignmentFilters, offset, limit int) ([]model.AssignmentModel, int64, error) {
	q := s.DB.Model(&model.AssignmentModel{}).
		Where("assignment_school_id = ? AND assignment_academic_year_id = ?", schoolID, yearID)

	if f.TeacherID != nil {
		q = q.Where("assignment_teacher_id = ?", *f.TeacherID)
	}
	if f.MaterialID != nil {
		q = q.Where("assignment_material_id = ?", *f.MaterialID)
	}
	if f.Signed != nil {
		q = q.Where("assignment_is_signed = ?", *f.Signed)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.AssignmentModel
	if err := q.
		Order("assignment_created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
