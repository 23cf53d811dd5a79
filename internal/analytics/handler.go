package analytics

import (
	"net/http"

	"product-tour-builder/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	dispatcher *Dispatcher
}

func NewHandler(dispatcher *Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// Collect accepts events from viewers and forwards them to the sink.
// Always 202: the viewer fires these on unload and will never read the
// response.
func (h *Handler) Collect(c *gin.Context) {
	var event Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if event.Referrer == "" {
		event.Referrer = c.GetHeader("Referer")
	}
	if event.UserAgent == "" {
		event.UserAgent = c.Request.UserAgent()
	}

	h.dispatcher.Emit(event)

	c.Status(http.StatusAccepted)
}
