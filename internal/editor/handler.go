package editor

import (
	"net/http"
	"strconv"

	"product-tour-builder/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Open loads the draft into a fresh in-memory session
func (h *Handler) Open(c *gin.Context) {
	tourID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	session, err := h.manager.Open(c.Request.Context(), tourID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tree":  session.Tree(),
		"dirty": session.Dirty(),
	})
}

// State returns the current in-memory tree, which may be ahead of the
// store while debounced edits are pending.
func (h *Handler) State(c *gin.Context) {
	session, err := h.session(c)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tree":  session.Tree(),
		"dirty": session.Dirty(),
	})
}

type MutateRequest struct {
	Mutation
	// "immediate" or "debounced"; field edits default to debounced
	Mode string `json:"mode" binding:"omitempty,oneof=immediate debounced"`
}

func (h *Handler) Mutate(c *gin.Context) {
	session, err := h.session(c)
	if err != nil {
		c.Error(err)
		return
	}

	var form MutateRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	mode := Debounced
	if form.Mode == "immediate" {
		mode = Immediate
	}

	if err := session.Apply(c.Request.Context(), form.Mutation, mode); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type GestureRequest struct {
	Action    string  `json:"action" binding:"required,oneof=drag resize move end cancel"`
	HotspotID uint64  `json:"hotspot_id"`
	Corner    string  `json:"corner"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
}

// Gesture drives the drag/resize state machine. Moves mutate only the
// in-memory tree; "end" is what commits geometry to the store.
func (h *Handler) Gesture(c *gin.Context) {
	session, err := h.session(c)
	if err != nil {
		c.Error(err)
		return
	}

	var form GestureRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	switch form.Action {
	case "drag":
		err = session.BeginDrag(form.HotspotID)
	case "resize":
		err = session.BeginResize(form.HotspotID, form.Corner)
	case "move":
		err = session.MoveGesture(form.DX, form.DY)
	case "end":
		err = session.EndGesture(c.Request.Context())
	case "cancel":
		session.CancelGesture()
	}

	if err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Flush forces pending debounced edits down to the store, used by the
// editor on tab close.
func (h *Handler) Flush(c *gin.Context) {
	session, err := h.session(c)
	if err != nil {
		c.Error(err)
		return
	}

	session.Flush()
	c.Status(http.StatusNoContent)
}

func (h *Handler) session(c *gin.Context) (*Session, error) {
	tourID, err := parseID(c)
	if err != nil {
		return nil, err
	}

	session := h.manager.Get(tourID)
	if session == nil {
		return nil, errors.Conflict("No editing session open for this tour", nil)
	}
	return session, nil
}

func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.NotFound("Tour not found", err)
	}
	return id, nil
}
