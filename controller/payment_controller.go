package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/avisharm-alt/curesite/gateway"
	"github.com/avisharm-alt/curesite/model"
	"github.com/avisharm-alt/curesite/payment"
)

type PaymentController struct {
	Checkout *payment.CheckoutService
	Statuses *payment.StatusService
}

func NewPaymentController(checkout *payment.CheckoutService, statuses *payment.StatusService) *PaymentController {
	return &PaymentController{
		Checkout: checkout,
		Statuses: statuses,
	}
}

func (pc *PaymentController) CreateCheckout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	userEmail, _ := c.Locals("user_email").(string)

	var body struct {
		TargetType string `json:"target_type"`
		TargetID   string `json:"target_id"`
		OriginURL  string `json:"origin_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if body.TargetID == "" || body.OriginURL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "target_id and origin_url are required"})
	}

	res, err := pc.Checkout.CreateCheckout(
		c.UserContext(),
		model.TargetType(body.TargetType),
		body.TargetID,
		userID,
		userEmail,
		body.OriginURL,
	)
	if err != nil {
		return c.Status(errToStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"checkout_url": res.CheckoutURL,
		"session_id":   res.SessionID,
	})
}

func (pc *PaymentController) Status(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role, _ := c.Locals("user_role").(string)

	sessionID := c.Params("session_id")
	if sessionID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "missing session id"})
	}

	res, err := pc.Statuses.GetPaymentStatus(c.UserContext(), sessionID, userID, role == "admin")
	if err != nil {
		return c.Status(errToStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"checkout_status": res.CheckoutStatus,
		"payment_status":  res.PaymentStatus,
		"amount":          res.Amount,
		"currency":        res.Currency,
	})
}

func errToStatus(err error) int {
	switch {
	case errors.Is(err, payment.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, payment.ErrTargetNotFound),
		errors.Is(err, payment.ErrUnknownSession):
		return fiber.StatusNotFound
	case errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, gateway.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		// includes ErrUnknownTargetType, which is a configuration fault
		return fiber.StatusInternalServerError
	}
}
