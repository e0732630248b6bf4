package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/http/dto"
	"pulse.app/engine/internal/http/middleware"
	"pulse.app/engine/internal/service"
)

type PulseHandler struct {
	pulseService service.PulseService
}

func NewPulseHandler(pulseService service.PulseService) *PulseHandler {
	return &PulseHandler{pulseService: pulseService}
}

// Block serves the synchronous, rule-based snapshot. This is the fast
// path: it never waits on the remote model.
func (h *PulseHandler) Block(c *gin.Context) {
	ctx := c.Request.Context()

	block, date, ok := h.blockParams(c)
	if !ok {
		return
	}

	snap, err := h.pulseService.BlockSnapshot(ctx, middleware.GetUserID(ctx), block, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build snapshot"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBlockSnapshotResponse(snap))
}

// BlockFull serves the remote-enriched snapshot. Remote failures degrade
// inside the service, so this still returns 200 with a rule-based
// narrative and the failure reason attached.
func (h *PulseHandler) BlockFull(c *gin.Context) {
	ctx := c.Request.Context()

	block, date, ok := h.blockParams(c)
	if !ok {
		return
	}

	snap, err := h.pulseService.BlockSnapshotWithRemote(ctx, middleware.GetUserID(ctx), block, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build snapshot"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBlockSnapshotResponse(snap))
}

// Composite serves the cross-block daily view plus the lifetime average.
func (h *PulseHandler) Composite(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(ctx)

	date, ok := h.dateParam(c)
	if !ok {
		return
	}

	composite, err := h.pulseService.Composite(ctx, userID, date)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build composite", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build composite"})
		return
	}

	allTime, err := h.pulseService.AllTimeAverage(ctx, userID)
	if err != nil {
		// The composite stands on its own; losing the lifetime number is
		// not worth failing the request.
		slog.WarnContext(ctx, "failed to compute all-time average", "error", err)
	}

	c.JSON(http.StatusOK, dto.ToCompositeSnapshotResponse(composite, allTime))
}

func (h *PulseHandler) blockParams(c *gin.Context) (domain.Block, domain.Date, bool) {
	block := domain.Block(c.Param("block"))
	if !block.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown block"})
		return "", "", false
	}
	date, ok := h.dateParam(c)
	return block, date, ok
}

// dateParam reads the optional ?date=YYYY-MM-DD query, defaulting to the
// current UTC day.
func (h *PulseHandler) dateParam(c *gin.Context) (domain.Date, bool) {
	raw := c.Query("date")
	if raw == "" {
		return domain.NewDate(time.Now().UTC()), true
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return "", false
	}
	return date, true
}
