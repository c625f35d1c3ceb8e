package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/gymcard/internal/export"
	"github.com/mansoorceksport/gymcard/internal/service"
	"github.com/mansoorceksport/gymcard/internal/telemetry"
)

// CardHandler serves the public member card behind the scan link
type CardHandler struct {
	cards   *service.CardService
	pdf     *export.CardPDF
	metrics *telemetry.Metrics
}

func NewCardHandler(cards *service.CardService, pdf *export.CardPDF, metrics *telemetry.Metrics) *CardHandler {
	return &CardHandler{cards: cards, pdf: pdf, metrics: metrics}
}

// GetCard handles GET /scan/:token
// ?scanned=1 selects the scanned view
func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	token := c.Params("token")
	scanned := c.Query("scanned") == "1"
	telemetry.SetSpanAttribute(c, "member.id", token)

	view, err := h.cards.GetCard(c.UserContext(), token, scanned)
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.CardViewed(string(view.Badge), scanned)

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}

// GetCardPDF handles GET /scan/:token/card.pdf
func (h *CardHandler) GetCardPDF(c *fiber.Ctx) error {
	token := c.Params("token")

	view, err := h.cards.GetCard(c.UserContext(), token, c.Query("scanned") == "1")
	if err != nil {
		return respondError(c, err)
	}

	pdf, err := h.pdf.Render(c.UserContext(), view)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="card-%s.pdf"`, view.ID))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(pdf)
}
