package revision

import (
	"net/http"
	"strconv"

	"product-tour-builder/internal/errors"

	"github.com/gin-gonic/gin"
)

// DirtyClearer lets the publish handler reset any open editor session's
// "has unpublished changes" flag after a successful publish.
type DirtyClearer interface {
	ClearDirty(tourID uint64)
}

type Handler struct {
	service Service
	editor  DirtyClearer
}

func NewHandler(service Service, editor DirtyClearer) *Handler {
	return &Handler{service: service, editor: editor}
}

func (h *Handler) Publish(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	result, err := h.service.Publish(c.Request.Context(), tourID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	h.editor.ClearDirty(tourID)

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Unpublish(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.Unpublish(c.Request.Context(), tourID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) List(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	revs, err := h.service.ListRevisions(c.Request.Context(), tourID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": revs})
}

// Preview plays the current draft without publishing it
func (h *Handler) Preview(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	snapshot, err := h.service.Preview(c.Request.Context(), tourID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) Restore(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	number, err := strconv.Atoi(c.Param("rev"))
	if err != nil {
		c.Error(errors.NotFound("Revision not found", err))
		return
	}

	if err := h.service.Restore(c.Request.Context(), tourID, number); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, param string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		return 0, errors.NotFound("Tour not found", err)
	}
	return id, nil
}
