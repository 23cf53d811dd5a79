package playback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/errors"
	"product-tour-builder/internal/revision"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const viewerCookie = "ptb_viewer"

// TourResolver looks tours up by their public identifier
type TourResolver interface {
	GetTourByPublicID(ctx context.Context, publicID string) (*domain.Tour, error)
}

// SnapshotProvider serves the frozen content of the live revision
type SnapshotProvider interface {
	GetLiveSnapshot(ctx context.Context, tour *domain.Tour) (*revision.Snapshot, error)
}

type Handler struct {
	tours     TourResolver
	snapshots SnapshotProvider
	sink      Sink
	registry  *Registry
}

func NewHandler(tours TourResolver, snapshots SnapshotProvider, sink Sink, registry *Registry) *Handler {
	return &Handler{
		tours:     tours,
		snapshots: snapshots,
		sink:      sink,
		registry:  registry,
	}
}

// View serves the public playback page data. Only the frozen revision
// content is rendered here; the draft tables are never read.
func (h *Handler) View(c *gin.Context) {
	tour, snapshot, ok := h.resolve(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"public_id": tour.PublicID,
		"name":      snapshot.Settings.Name,
		"snapshot":  snapshot,
		"branding":  snapshot.Settings.ShowBranding,
	})
}

// Embed serves the iframe variant. It honors the allowed-domains list,
// never lets crawlers index it, and lets the embedding page hide
// branding only when the published settings already allow it.
func (h *Handler) Embed(c *gin.Context) {
	c.Header("X-Robots-Tag", "noindex")

	tour, snapshot, ok := h.resolve(c)
	if !ok {
		return
	}

	if err := checkAllowedDomains(tour, c); err != nil {
		c.Error(err)
		return
	}

	hideBranding, _ := strconv.ParseBool(c.Query("hideBranding"))
	autoplay, _ := strconv.ParseBool(c.Query("autoplay"))

	c.JSON(http.StatusOK, gin.H{
		"public_id": tour.PublicID,
		"snapshot":  snapshot,
		"branding":  snapshot.Settings.ShowBranding && !hideBranding,
		"autoplay":  autoplay,
	})
}

type sessionResponse struct {
	SessionID string      `json:"session_id"`
	State     State       `json:"state"`
	Render    Instruction `json:"render"`
	Completed bool        `json:"completed"`
}

// StartSession mounts an engine for one viewer and emits the view
// events for the initial position.
func (h *Handler) StartSession(c *gin.Context) {
	tour, snapshot, ok := h.resolve(c)
	if !ok {
		return
	}

	viewerID, err := c.Cookie(viewerCookie)
	if err != nil || viewerID == "" {
		viewerID = uuid.NewString()
		c.SetCookie(viewerCookie, viewerID, 60*60*24*365, "/", "", false, true)
	}

	engine := NewEngine(snapshot, h.sink, Viewer{
		DemoID:    tour.ID,
		PublicID:  tour.PublicID,
		ViewerID:  viewerID,
		SessionID: uuid.NewString(),
		Referrer:  c.GetHeader("Referer"),
		UserAgent: c.Request.UserAgent(),
	})
	engine.Start()

	c.JSON(http.StatusCreated, sessionResponse{
		SessionID: h.registry.Create(engine),
		State:     engine.State(),
		Render:    engine.Render(),
	})
}

type InputRequest struct {
	Input       string `json:"input" binding:"required,oneof=beacon_click next back key_right key_left key_space go_to_step"`
	ScreenIndex int    `json:"screen_index"`
}

// Input drives one transition on an open session
func (h *Handler) Input(c *gin.Context) {
	engine, ok := h.registry.Get(c.Param("sessionId"))
	if !ok {
		c.Error(errors.NotFound("Session not found", nil))
		return
	}

	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	state := engine.HandleInput(req.Input, req.ScreenIndex)

	c.JSON(http.StatusOK, sessionResponse{
		SessionID: c.Param("sessionId"),
		State:     state,
		Render:    engine.Render(),
		Completed: engine.Completed(),
	})
}

// EndSession drops the engine. Viewers call this on unload, best-effort.
func (h *Handler) EndSession(c *gin.Context) {
	h.registry.Remove(c.Param("sessionId"))
	c.Status(http.StatusNoContent)
}

// resolve loads the tour behind :publicId, enforces the publish state
// and the password gate, and fetches the frozen snapshot. Unpublished
// and unknown tours are indistinguishable from outside.
func (h *Handler) resolve(c *gin.Context) (*domain.Tour, *revision.Snapshot, bool) {
	tour, err := h.tours.GetTourByPublicID(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		c.Error(err)
		return nil, nil, false
	}

	if !tour.IsPublished() {
		c.Error(errors.NotFound("Tour not found", nil))
		return nil, nil, false
	}

	if tour.Password != nil && *tour.Password != "" {
		given := c.GetHeader("X-Tour-Password")
		if given == "" {
			given = c.Query("password")
		}
		if given != *tour.Password {
			c.Error(errors.Unauthorized("Password required", nil))
			return nil, nil, false
		}
	}

	snapshot, err := h.snapshots.GetLiveSnapshot(c.Request.Context(), tour)
	if err != nil {
		c.Error(err)
		return nil, nil, false
	}

	return tour, snapshot, true
}

// checkAllowedDomains restricts embedding to the configured host list.
// An empty list means embed anywhere.
func checkAllowedDomains(tour *domain.Tour, c *gin.Context) error {
	if len(tour.AllowedDomains) == 0 {
		return nil
	}

	var allowed []string
	if err := json.Unmarshal(tour.AllowedDomains, &allowed); err != nil || len(allowed) == 0 {
		return nil
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = c.GetHeader("Referer")
	}
	if origin == "" {
		return errors.Forbidden("Embedding not allowed from this domain", nil)
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		return errors.Forbidden("Embedding not allowed from this domain", nil)
	}

	host := parsed.Hostname()
	for _, domainName := range allowed {
		if host == domainName || strings.HasSuffix(host, "."+domainName) {
			return nil
		}
	}

	return errors.Forbidden("Embedding not allowed from this domain", nil)
}
