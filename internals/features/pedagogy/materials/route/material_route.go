package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	auditService "scolaris_backend/internals/features/audit/service"
	controller "scolaris_backend/internals/features/pedagogy/materials/controller"
)

func MaterialRoutes(router fiber.Router, db *gorm.DB) {
	ctrl := &controller.MaterialController{DB: db, Audit: auditService.NewRecorder(db)}

	materials := router.Group("/materials")
	materials.Post("/", ctrl.Create)
	materials.Get("/", ctrl.List)
	materials.Get("/:id", ctrl.GetByID)
	materials.Put("/:id", ctrl.Update)
	materials.Delete("/:id", ctrl.Delete)
}
