package content

import (
	"net/http"
	"strconv"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/internal/uploads"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service  Service
	resolver uploads.Resolver
}

func NewHandler(service Service, resolver uploads.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

type CreateScreenRequest struct {
	// Either a finished upload id or a direct image reference.
	UploadID string `json:"upload_id"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
}

func (h *Handler) CreateScreen(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form CreateScreenRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	screen := &domain.Screen{
		TourID:   tourID,
		ImageURL: form.ImageURL,
		Width:    form.Width,
		Height:   form.Height,
	}

	if form.UploadID != "" {
		image, err := h.resolver.ResolveUpload(c.Request.Context(), form.UploadID)
		if err != nil {
			c.Error(errors.UnprocessableEntity("Upload not found or not finished", err))
			return
		}
		screen.ImageURL = image.URL
		screen.Width = &image.Width
		screen.Height = &image.Height
	}

	if err := h.service.CreateScreen(c.Request.Context(), screen); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, screen)
}

func (h *Handler) ListScreens(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	screens, err := h.service.ListScreens(c.Request.Context(), tourID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": screens})
}

func (h *Handler) UpdateScreen(c *gin.Context) {
	screenID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.UpdateScreen(c.Request.Context(), screenID, fields); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteScreen(c *gin.Context) {
	screenID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteScreen(c.Request.Context(), screenID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type ReorderRequest struct {
	IDs []uint64 `json:"ids" binding:"required,min=1"`
}

func (h *Handler) ReorderScreens(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form ReorderRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.ReorderScreens(c.Request.Context(), tourID, form.IDs); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type CreateHotspotRequest struct {
	Kind           string           `json:"kind" binding:"omitempty,oneof=intro closing action"`
	TargetScreenID *uint64          `json:"target_screen_id"`
	Label          string           `json:"label" binding:"max=255"`
	Tooltip        string           `json:"tooltip" binding:"max=1024"`
	Body           string           `json:"body"`
	Position       *domain.Position `json:"position"`
}

func (h *Handler) CreateHotspot(c *gin.Context) {
	screenID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form CreateHotspotRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	hotspot := &domain.Hotspot{
		ScreenID:       screenID,
		Kind:           form.Kind,
		TargetScreenID: form.TargetScreenID,
		Label:          form.Label,
		Tooltip:        form.Tooltip,
		Body:           form.Body,
	}
	if form.Position != nil {
		hotspot.Position = *form.Position
	}

	if err := h.service.CreateHotspot(c.Request.Context(), hotspot); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, hotspot)
}

func (h *Handler) UpdateHotspot(c *gin.Context) {
	hotspotID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.UpdateHotspot(c.Request.Context(), hotspotID, fields); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteHotspot(c *gin.Context) {
	hotspotID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteHotspot(c.Request.Context(), hotspotID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ReorderHotspots(c *gin.Context) {
	screenID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form ReorderRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.ReorderHotspots(c.Request.Context(), screenID, form.IDs); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

type CreateStepRequest struct {
	ScreenID  uint64  `json:"screen_id" binding:"required"`
	HotspotID *uint64 `json:"hotspot_id"`
	Title     string  `json:"title" binding:"max=255"`
	Body      string  `json:"body"`
	Placement string  `json:"placement" binding:"omitempty,oneof=top bottom left right"`
}

func (h *Handler) CreateStep(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form CreateStepRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	step := &domain.Step{
		TourID:    tourID,
		ScreenID:  form.ScreenID,
		HotspotID: form.HotspotID,
		Title:     form.Title,
		Body:      form.Body,
		Placement: form.Placement,
	}

	if err := h.service.CreateStep(c.Request.Context(), step); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, step)
}

func (h *Handler) ListSteps(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	steps, err := h.service.ListSteps(c.Request.Context(), tourID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": steps})
}

func (h *Handler) UpdateStep(c *gin.Context) {
	stepID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.UpdateStep(c.Request.Context(), stepID, fields); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteStep(c *gin.Context) {
	stepID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteStep(c.Request.Context(), stepID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ReorderSteps(c *gin.Context) {
	tourID, err := parseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form ReorderRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.service.ReorderSteps(c.Request.Context(), tourID, form.IDs); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, param string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		return 0, errors.NotFound("Resource not found", err)
	}
	return id, nil
}
