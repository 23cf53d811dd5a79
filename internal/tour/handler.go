package tour

import (
	"net/http"
	"strconv"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateTourRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateTourRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")
	workspaceID, _ := c.Get("workspace_id")

	tour := &domain.Tour{
		Name:         form.Name,
		Description:  form.Description,
		ShowBranding: true,
	}

	if err := h.service.CreateTour(c.Request.Context(), workspaceID.(uint64), userID.(uint64), tour); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, tour)
}

func (h *Handler) List(c *gin.Context) {
	workspaceID, _ := c.Get("workspace_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListTours(c.Request.Context(), workspaceID.(uint64), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Show(c *gin.Context) {
	tourID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	tour, err := h.service.GetTour(c.Request.Context(), tourID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, tour)
}

func (h *Handler) Update(c *gin.Context) {
	tourID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	tour, err := h.service.UpdateTour(c.Request.Context(), tourID, fields)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, tour)
}

func (h *Handler) Delete(c *gin.Context) {
	tourID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteTour(c.Request.Context(), tourID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.NotFound("Tour not found", err)
	}
	return id, nil
}
