package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse.app/engine/internal/http/dto"
	"pulse.app/engine/internal/http/middleware"
	"pulse.app/engine/internal/service"
)

type EntryHandler struct {
	entryService service.EntryService
}

func NewEntryHandler(entryService service.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

func (h *EntryHandler) Log(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := req.ToEntry(middleware.GetUserID(ctx))
	if err := h.entryService.Log(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to log entry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log entry"})
		return
	}

	c.JSON(http.StatusCreated, dto.LogEntryResponse{
		EntryID: entry.ID,
		Block:   string(entry.Block),
		Date:    string(entry.Date),
	})
}
