package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "scolaris_backend/internals/features/academics/academic_years/controller"
	auditService "scolaris_backend/internals/features/audit/service"
)

func AcademicYearRoutes(router fiber.Router, db *gorm.DB) {
	ctrl := &controller.AcademicYearController{DB: db, Audit: auditService.NewRecorder(db)}

	years := router.Group("/academic-years")
	years.Post("/", ctrl.Create)
	years.Get("/", ctrl.List)
	years.Get("/:id", ctrl.GetByID)
	years.Put("/:id", ctrl.Update)
}
