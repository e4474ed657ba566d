package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"scolaris_backend/internals/configs"
)

func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
}

func CorsMiddleware() fiber.Handler {
	origins := configs.GetEnvDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	return cors.New(cors.Config{
		AllowOrigins: strings.Join(strings.Split(origins, ","), ", "),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-School-ID, X-Academic-Year-ID",
		AllowCredentials: true,
	})
}

// RecoveryMiddleware turns panics into 500 responses instead of dropping the worker.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
	})
}
