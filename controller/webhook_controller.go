package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/avisharm-alt/curesite/gateway"
	"github.com/avisharm-alt/curesite/payment"
)

type WebhookController struct {
	Gateway    gateway.Client
	Reconciler *payment.Reconciler
}

func NewWebhookController(gw gateway.Client, reconciler *payment.Reconciler) *WebhookController {
	return &WebhookController{
		Gateway:    gw,
		Reconciler: reconciler,
	}
}

// Handle processes gateway push notifications. The signature check is a
// hard boundary: an unverified body is rejected before anything reads it.
// Acknowledgements are idempotent, a replayed event for an already
// completed session still gets a 200.
func (wc *WebhookController) Handle(c *fiber.Ctx) error {
	sig := c.Get("Stripe-Signature")
	if sig == "" {
		return c.Status(400).JSON(fiber.Map{"error": "missing signature"})
	}

	event, err := wc.Gateway.VerifyAndParseWebhook(c.Body(), sig)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid signature"})
	}

	if event.Type != gateway.EventCheckoutCompleted {
		// Not ours to handle; ack so the gateway stops retrying.
		return c.JSON(fiber.Map{"received": true})
	}
	if event.SessionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "event has no session id"})
	}

	if _, err := wc.Reconciler.Reconcile(c.UserContext(), event.SessionID); err != nil {
		if errors.Is(err, payment.ErrUnknownSession) {
			// Sessions from other environments sharing the endpoint;
			// retrying will never help.
			log.Printf("webhook for unknown session %s ignored", event.SessionID)
			return c.JSON(fiber.Map{"received": true})
		}
		log.Printf("webhook reconciliation failed for %s: %v", event.SessionID, err)
		return c.Status(500).JSON(fiber.Map{"error": "reconciliation failed"})
	}

	return c.JSON(fiber.Map{"received": true})
}
