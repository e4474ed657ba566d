package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "scolaris_backend/internals/features/audit/controller"
)

func AuditRoutes(router fiber.Router, db *gorm.DB) {
	ctrl := &controller.AuditController{DB: db}

	router.Get("/audit", ctrl.List)
}
