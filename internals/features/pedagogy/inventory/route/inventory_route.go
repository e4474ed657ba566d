package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditService "scolaris_backend/internals/features/audit/service"
	controller "scolaris_backend/internals/features/pedagogy/inventory/controller"
	service "scolaris_backend/internals/features/pedagogy/inventory/service"
)

// InventoryRoutes wires the ledger, stock and assignment endpoints. Role
// enforcement happens inside the handlers (guard order matters there); the
// router only groups paths.
func InventoryRoutes(router fiber.Router, db *gorm.DB) {
	ledger := service.NewLedgerService(db)
	assignments := service.NewAssignmentService(db, ledger)
	audit := auditService.NewRecorder(db)

	movementCtrl := &controller.MovementController{DB: db, Ledger: ledger, Audit: audit}
	stockCtrl := &controller.StockController{DB: db, Ledger: ledger, Audit: audit}
	assignmentCtrl := &controller.AssignmentController{DB: db, Assignments: assignments, Audit: audit}

	inventory := router.Group("/inventory")

	movements := inventory.Group("/movements")
	movements.Post("/", movementCtrl.Create)
	movements.Get("/", movementCtrl.List)

	stocks := inventory.Group("/stocks")
	stocks.Get("/", stockCtrl.Get)
	stocks.Get("/list", stockCtrl.List)
	stocks.Post("/rebuild", stockCtrl.Rebuild)

	assignmentsGroup := inventory.Group("/assignments")
	assignmentsGroup.Post("/", assignmentCtrl.Create)
	assignmentsGroup.Get("/", assignmentCtrl.List)
	assignmentsGroup.Get("/:id", assignmentCtrl.GetByID)
	assignmentsGroup.Post("/:id/sign", assignmentCtrl.Sign)
}
