package rest

import "github.com/gofiber/fiber/v2"

type ServerInterface interface {
	// (POST /build)
	BuildSite(c *fiber.Ctx) error
	// (GET /healthz)
	Healthcheck(c *fiber.Ctx) error
}

func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Post("/build", si.BuildSite)
	router.Get("/healthz", si.Healthcheck)
}
