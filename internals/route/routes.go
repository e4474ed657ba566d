package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scolaris_backend/internals/configs"
	yearRoute "scolaris_backend/internals/features/academics/academic_years/route"
	auditRoute "scolaris_backend/internals/features/audit/route"
	inventoryRoute "scolaris_backend/internals/features/pedagogy/inventory/route"
	materialRoute "scolaris_backend/internals/features/pedagogy/materials/route"
	authMiddleware "scolaris_backend/internals/middlewares/auth"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== ADMIN (per school, authenticated) =====================
	logrus.Info("setting up /api/a group")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	yearRoute.AcademicYearRoutes(admin, db)
	materialRoute.MaterialRoutes(admin, db)
	inventoryRoute.InventoryRoutes(admin, db)
	auditRoute.AuditRoutes(admin, db)
}
