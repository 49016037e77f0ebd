package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avisharm-alt/curesite/controller"
)

func RegisterPaymentRoutes(app *fiber.App, authMiddleware fiber.Handler, pc *controller.PaymentController, wc *controller.WebhookController) {
	api := app.Group("/api")

	p := api.Group("/payments")
	p.Post("/checkout", authMiddleware, pc.CreateCheckout)
	p.Get("/status/:session_id", authMiddleware, pc.Status)

	// Public at the transport layer; authenticated by signature.
	api.Post("/webhook/payments", wc.Handle)
}
