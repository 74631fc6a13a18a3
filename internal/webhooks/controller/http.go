package controller

import (
	"io"

	"github.com/labstack/echo/v4"

	"github.com/corvusHold/outreach/internal/platform/envelope"
	domain "github.com/corvusHold/outreach/internal/webhooks/domain"
)

// maxBody bounds a single SNS delivery; SNS messages are at most 256 KiB.
const maxBody = 1 << 20

type Controller struct {
	svc domain.Service
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// RegisterV1 mounts POST /webhooks/email-events on the /api/v1 group. It is unauthenticated.
func (h *Controller) RegisterV1(g *echo.Group) {
	g.POST("/webhooks/email-events", h.emailEvents)
}

// EmailEvents godoc
// @Summary      Email provider events
// @Description  Receives SNS deliveries. Notifications attach the event to the matching stats record;
// @Description  subscription confirmations are confirmed; other types are acknowledged.
// @Tags         webhooks
// @Accept       plain
// @Produce      json
// @Param        x-amz-sns-message-type  header  string  true  "SNS message type"
// @Success      200  {object}  envelope.Response
// @Failure      400  {object}  envelope.Response
// @Failure      422  {object}  envelope.Response
// @Router       /api/v1/webhooks/email-events [post]
func (h *Controller) emailEvents(c echo.Context) error {
	// SNS posts JSON as text/plain, so the body is read raw instead of bound.
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBody))
	if err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	if err := h.svc.Handle(c.Request().Context(), c.Request().Header.Get(domain.MessageTypeHeader), body); err != nil {
		return err
	}
	return envelope.OK(c, "Event received", nil)
}
